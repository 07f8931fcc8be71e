package domain

import "time"

// Session is a signed, stateless bearer credential. The server keeps no record of it.
type Session struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionClaims is the result of verifying an inbound session token.
// Valid is false for bad signatures, expired tokens and malformed input.
type SessionClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Valid     bool
}

// AuthResult is what a successful sign-in hands back to the caller.
type AuthResult struct {
	User    *User
	Session Session
	Created bool // true when this sign-in registered the user
}
