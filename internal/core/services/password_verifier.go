package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/utils"
)

const (
	deterministicTokenPrefix = "auto-generated-"
	deterministicTokenSuffix = "-password"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// passwordVerifier implements PasswordVerifierSvc.
type passwordVerifier struct {
	cost          int
	deterministic bool
	metrics       portssvc.AuthMetrics
}

// PasswordVerifierOption configures a passwordVerifier.
type PasswordVerifierOption func(*passwordVerifier)

// WithDeterministicTokens enables the legacy email-derived passwordless token.
func WithDeterministicTokens(enabled bool) PasswordVerifierOption {
	return func(v *passwordVerifier) {
		v.deterministic = enabled
	}
}

// WithVerifierMetrics records hash comparison durations.
func WithVerifierMetrics(m portssvc.AuthMetrics) PasswordVerifierOption {
	return func(v *passwordVerifier) {
		if m != nil {
			v.metrics = m
		}
	}
}

// NewPasswordVerifier creates a verifier hashing with the given bcrypt cost.
func NewPasswordVerifier(cost int, opts ...PasswordVerifierOption) portssvc.PasswordVerifierSvc {
	v := &passwordVerifier{cost: cost, metrics: noopAuthMetrics{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *passwordVerifier) HashPassword(secret string) (string, error) {
	return utils.HashPassword(secret, v.cost)
}

// Check verifies secret against storedHash. In deterministic mode the email-derived
// token is accepted for email without consulting storedHash. Clients derive it from
// the address as typed, so the comparison ignores case.
func (v *passwordVerifier) Check(secret, storedHash, email string) domain.VerificationResult {
	if v.deterministic && email != "" && utils.ConstantTimeEquals(strings.ToLower(secret), v.DeterministicToken(email)) {
		return domain.VerifyOK
	}
	if storedHash == "" {
		return domain.VerifyNoHash
	}

	start := time.Now()
	err := utils.ComparePasswordHash(secret, storedHash)
	v.metrics.ObservePasswordVerify(time.Since(start))

	switch {
	case err == nil:
		return domain.VerifyOK
	case utils.IsPasswordMismatch(err):
		return domain.VerifyMismatch
	default:
		return domain.VerifyMalformedHash
	}
}

func (v *passwordVerifier) Verify(secret, storedHash, email string) bool {
	return v.Check(secret, storedHash, email).OK()
}

// DeterministicToken derives auto-generated-<sanitized>-password where sanitized is
// the normalized email with every character outside [A-Za-z0-9] removed.
// Distinct emails that sanitize identically ("a@b.com", "ab.com") share a token.
func (v *passwordVerifier) DeterministicToken(email string) string {
	sanitized := nonAlphanumeric.ReplaceAllString(domain.NormalizeEmail(email), "")
	return deterministicTokenPrefix + sanitized + deterministicTokenSuffix
}

func (v *passwordVerifier) DeterministicTokensEnabled() bool {
	return v.deterministic
}
