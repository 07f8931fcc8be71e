package services

import (
	"context"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
)

// PasswordVerifierSvc checks presented secrets against stored hashes.
type PasswordVerifierSvc interface {
	// HashPassword hashes a plaintext secret with the configured adaptive cost.
	HashPassword(secret string) (string, error)
	// Check returns the typed verification outcome. It never panics on malformed hashes.
	Check(secret, storedHash, email string) domain.VerificationResult
	// Verify is Check(...).OK().
	Verify(secret, storedHash, email string) bool
	// DeterministicToken derives the legacy passwordless token for email.
	DeterministicToken(email string) string
	// DeterministicTokensEnabled reports whether the legacy token mode is accepted.
	DeterministicTokensEnabled() bool
}

// IdentityReconcilerSvc maps identity assertions onto exactly one local user per email.
type IdentityReconcilerSvc interface {
	// Reconcile finds or creates the user for identity.Email and refreshes profile fields.
	// created reports whether this call inserted the row.
	Reconcile(ctx context.Context, identity domain.Identity) (user *domain.User, created bool, err error)
	// Register creates a new user and never merges. Returns apperrors.ErrDuplicateEmail
	// when the email is taken.
	Register(ctx context.Context, identity domain.Identity) (*domain.User, error)
}

// SessionIssuerSvc mints and verifies stateless session tokens.
type SessionIssuerSvc interface {
	Issue(ctx context.Context, user *domain.User) (domain.Session, error)
	// Verify never returns an error; invalid tokens yield Valid == false.
	Verify(token string) domain.SessionClaims
}

// LoginLinkSvc issues and redeems one-time passwordless login links.
type LoginLinkSvc interface {
	// RequestLink mints a link for email, hands it to the notifier and returns its expiry.
	RequestLink(ctx context.Context, email string) (time.Time, error)
	// Consume redeems token for email exactly once. Returns apperrors.ErrInvalidLoginLink otherwise.
	Consume(ctx context.Context, email, token string) error
	// PruneExpired deletes links that are already past their expiry.
	PruneExpired(ctx context.Context) (int64, error)
}

// LoginLinkNotifier delivers a freshly minted login link to its owner.
type LoginLinkNotifier interface {
	Deliver(ctx context.Context, delivery domain.LoginLinkDelivery) error
}

// SocialProviderSvc wraps the configured external identity providers.
type SocialProviderSvc interface {
	// EnabledProviders lists the providers present in the registry.
	EnabledProviders() []domain.AuthProvider
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetLoginURL returns the URL to redirect the user to for the provider's consent screen.
	GetLoginURL(ctx context.Context, provider domain.AuthProvider, state string) (string, error)
	// ExchangeCode exchanges an authorization code and returns the verified profile.
	ExchangeCode(ctx context.Context, provider domain.AuthProvider, code string) (*domain.SocialProfile, error)
}

// AuthOrchestratorSvc is the flow controller invoked by the HTTP layer.
type AuthOrchestratorSvc interface {
	// Register creates a credential user and signs them in.
	Register(ctx context.Context, email, password, displayName string) (*domain.AuthResult, error)
	// CheckUser probes whether an account exists for email.
	CheckUser(ctx context.Context, email string) (*domain.User, bool, error)
	// SocialSignIn reconciles a provider-verified profile and issues a session.
	SocialSignIn(ctx context.Context, profile domain.SocialProfile) (*domain.AuthResult, error)
	// CredentialSignIn verifies email and password and issues a session.
	CredentialSignIn(ctx context.Context, email, password string) (*domain.AuthResult, error)
	// PasswordlessSignIn signs in or silently registers email using a passwordless secret.
	PasswordlessSignIn(ctx context.Context, email, secret string) (*domain.AuthResult, error)
	// RequestLoginLink sends a one-time login link to email.
	RequestLoginLink(ctx context.Context, email string) (time.Time, error)
}

// AuthEventTracker records product analytics for successful sign-ins.
type AuthEventTracker interface {
	TrackSignIn(userID string, method string, created bool)
}

// AuthMetrics records operational metrics for the auth flow.
type AuthMetrics interface {
	RecordAttempt(method, outcome string)
	RecordRegistrationRetry()
	ObservePasswordVerify(d time.Duration)
}
