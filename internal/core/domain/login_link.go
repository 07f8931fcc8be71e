package domain

import "time"

// LoginLink is a server-issued one-time secret for passwordless sign-in.
// Only the hash of the token is stored.
type LoginLink struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	TokenHash string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// IsExpired checks if the link has expired at the given time.
func (l *LoginLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IsUsed reports whether the link was already consumed.
func (l *LoginLink) IsUsed() bool {
	return l.UsedAt != nil
}

// LoginLinkDelivery is handed to a notifier so the link can reach the user.
type LoginLinkDelivery struct {
	Email     string    `json:"email"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationResult is the typed outcome of checking a presented secret.
type VerificationResult int

const (
	VerifyMismatch VerificationResult = iota
	VerifyOK
	VerifyNoHash
	VerifyMalformedHash
)

// OK reports whether the secret was accepted.
func (r VerificationResult) OK() bool {
	return r == VerifyOK
}

func (r VerificationResult) String() string {
	switch r {
	case VerifyOK:
		return "ok"
	case VerifyNoHash:
		return "no_hash"
	case VerifyMalformedHash:
		return "malformed_hash"
	default:
		return "mismatch"
	}
}
