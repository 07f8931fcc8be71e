package mapping

import (
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/SscSPs/storefront_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:        d.UserID,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Provider:      string(d.Provider),
		ProviderID:    d.ProviderID,
		DisplayName:   d.DisplayName,
		AvatarURL:     d.AvatarURL,
		EmailVerified: d.EmailVerified,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:        m.UserID,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		Provider:      domain.AuthProvider(m.Provider),
		ProviderID:    m.ProviderID,
		DisplayName:   m.DisplayName,
		AvatarURL:     m.AvatarURL,
		EmailVerified: m.EmailVerified,
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}
