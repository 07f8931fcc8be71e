package mapping

import (
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/SscSPs/storefront_backend/internal/models"
)

// ToModelLoginLink converts a domain LoginLink to a model LoginLink
func ToModelLoginLink(d domain.LoginLink) models.LoginLink {
	return models.LoginLink{
		ID:        d.ID,
		Email:     d.Email,
		TokenHash: d.TokenHash,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
		UsedAt:    d.UsedAt,
	}
}

// ToDomainLoginLink converts a model LoginLink to a domain LoginLink
func ToDomainLoginLink(m models.LoginLink) domain.LoginLink {
	return domain.LoginLink{
		ID:        m.ID,
		Email:     m.Email,
		TokenHash: m.TokenHash,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		UsedAt:    m.UsedAt,
	}
}
