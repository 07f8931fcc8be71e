package domain

import (
	"strings"
	"time"
)

// AuthProvider records how an identity was first established.
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
	ProviderApple    AuthProvider = "apple"
)

// IsSocial reports whether the provider is an external identity service.
func (p AuthProvider) IsSocial() bool {
	switch p {
	case ProviderGoogle, ProviderFacebook, ProviderApple:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is one of the known providers.
func (p AuthProvider) IsValid() bool {
	return p == ProviderEmail || p.IsSocial()
}

// User represents a storefront customer identity. Exactly one User exists per email.
type User struct {
	UserID        string       `json:"userID"`
	Email         string       `json:"email"`
	PasswordHash  *string      `json:"-"`
	Provider      AuthProvider `json:"provider"`
	ProviderID    string       `json:"providerID,omitempty"`
	DisplayName   string       `json:"displayName,omitempty"`
	AvatarURL     string       `json:"avatarURL,omitempty"`
	EmailVerified bool         `json:"emailVerified"`
	Timestamps
}

// HasPassword reports whether a password hash is stored for the user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) GetUserID() string      { return u.UserID }
func (u *User) GetEmail() string       { return u.Email }
func (u *User) GetDisplayName() string { return u.DisplayName }

// UserUpdate holds the profile fields a reconciliation pass may refresh.
// Nil fields are left untouched.
type UserUpdate struct {
	DisplayName *string
	AvatarURL   *string
	UpdatedAt   time.Time
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
