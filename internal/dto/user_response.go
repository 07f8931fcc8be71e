package dto

import (
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
)

type UserResponse struct {
	UserID        string    `json:"userID"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"name,omitempty"`
	AvatarURL     string    `json:"avatarURL,omitempty"`
	Provider      string    `json:"provider"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToUserResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		UserID:        user.UserID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		AvatarURL:     user.AvatarURL,
		Provider:      string(user.Provider),
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}
