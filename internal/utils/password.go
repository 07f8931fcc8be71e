package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by ComparePasswordHash when the hash is well formed
// but does not match the password.
var ErrPasswordMismatch = bcrypt.ErrMismatchedHashAndPassword

// HashPassword hashes a plaintext password using bcrypt at the given cost.
// Costs outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// ComparePasswordHash compares a plaintext password with a bcrypt hash.
// It returns nil on match, ErrPasswordMismatch on mismatch, and any other
// error when the hash itself is malformed.
func ComparePasswordHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// IsPasswordMismatch reports whether err is a plain mismatch rather than a malformed hash.
func IsPasswordMismatch(err error) bool {
	return errors.Is(err, ErrPasswordMismatch)
}
