package models

import (
	"time"
)

// User is the persisted row of the users table.
type User struct {
	UserID        string    `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  *string   `db:"password_hash"`
	Provider      string    `db:"provider"`
	ProviderID    string    `db:"provider_id"`
	DisplayName   string    `db:"display_name"`
	AvatarURL     string    `db:"avatar_url"`
	EmailVerified bool      `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
