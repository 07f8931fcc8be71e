package dto

import (
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,max=320"`
	Password    string `json:"password" binding:"required,max=72"`
	DisplayName string `json:"name" binding:"max=200"`
}

// CheckUserRequest is the body of POST /auth/check-user.
type CheckUserRequest struct {
	Email string `json:"email" binding:"required,max=320"`
}

// CheckUserResponse reports whether an account exists for the probed email.
type CheckUserResponse struct {
	Exists bool            `json:"exists"`
	User   *CheckUserEntry `json:"user,omitempty"`
}

// CheckUserEntry is the minimal user view exposed by the existence probe.
type CheckUserEntry struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Sign-in provider names accepted by POST /auth/signin.
const (
	SignInProviderCredentials = "credentials"
	SignInProviderEmail       = "email"
)

// SignInRequest is the body of the generic, provider-pluggable sign-in endpoint.
type SignInRequest struct {
	Provider    string            `json:"provider" binding:"required,oneof=credentials email google facebook apple"`
	Credentials SignInCredentials `json:"credentials"`
}

// SignInCredentials carries whichever secret the chosen provider needs.
type SignInCredentials struct {
	Email    string `json:"email" binding:"max=320"`
	Password string `json:"password" binding:"max=72"`
	Token    string `json:"token" binding:"max=256"`
	Code     string `json:"code" binding:"max=2048"`
}

// LoginLinkRequest asks for a one-time login link.
type LoginLinkRequest struct {
	Email string `json:"email" binding:"required,max=320"`
}

// LoginLinkResponse is returned once a link has been handed off for delivery.
type LoginLinkResponse struct {
	Sent      bool      `json:"sent"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExchangeCodeRequest defines the expected JSON body for the exchange-code endpoint.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required,max=2048"`
}

// AuthResponse is returned by every successful sign-in or registration.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	Created   bool         `json:"created"`
	User      UserResponse `json:"user"`
}

// ToAuthResponse converts a domain.AuthResult to AuthResponse DTO.
func ToAuthResponse(result *domain.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		Created:   result.Created,
		User:      ToUserResponse(result.User),
	}
}

// ProvidersResponse lists the enabled social providers.
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// OAuthURLResponse carries the consent-screen URL and the CSRF state to echo back.
type OAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}
