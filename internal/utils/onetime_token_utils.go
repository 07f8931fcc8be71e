package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
)

// GenerateSecureRandomString returns n random bytes, hex encoded (2n chars).
func GenerateSecureRandomString(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("random string length must be positive")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewOneTimeToken returns a fresh token for the client and the hash to store.
func NewOneTimeToken(n int) (token, hash string, err error) {
	token, err = GenerateSecureRandomString(n)
	if err != nil {
		return "", "", err
	}
	return token, HashOneTimeToken(token), nil
}

// HashOneTimeToken returns the hex SHA-256 of a one-time token. Tokens are high
// entropy random strings, so a fast hash is enough for storage lookups.
func HashOneTimeToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two secrets without leaking where they differ.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
