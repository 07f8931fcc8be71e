package models

import "time"

// LoginLink is the persisted row of the login_links table.
type LoginLink struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	TokenHash string     `db:"token_hash"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
}
