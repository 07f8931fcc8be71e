package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
)

// Sign-in methods used for metrics and analytics.
const (
	MethodRegister     = "register"
	MethodCredentials  = "credentials"
	MethodPasswordless = "passwordless"
	MethodSocial       = "social"
	MethodLoginLink    = "login_link"
)

// authOrchestrator implements AuthOrchestratorSvc.
type authOrchestrator struct {
	BaseService
	users      portsrepo.UserReader
	verifier   portssvc.PasswordVerifierSvc
	reconciler portssvc.IdentityReconcilerSvc
	sessions   portssvc.SessionIssuerSvc
	links      portssvc.LoginLinkSvc
	retry      RetryPolicy
	metrics    portssvc.AuthMetrics
	tracker    portssvc.AuthEventTracker
}

// AuthOrchestratorOption configures an authOrchestrator.
type AuthOrchestratorOption func(*authOrchestrator)

// WithLoginLinks enables one-time login links for passwordless sign-in.
func WithLoginLinks(links portssvc.LoginLinkSvc) AuthOrchestratorOption {
	return func(o *authOrchestrator) {
		o.links = links
	}
}

// WithRetryPolicy sets the policy around passwordless registration-then-login.
func WithRetryPolicy(p RetryPolicy) AuthOrchestratorOption {
	return func(o *authOrchestrator) {
		o.retry = p
	}
}

// WithAuthMetrics records attempt outcomes and registration retries.
func WithAuthMetrics(m portssvc.AuthMetrics) AuthOrchestratorOption {
	return func(o *authOrchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithAuthEventTracker records successful sign-ins.
func WithAuthEventTracker(t portssvc.AuthEventTracker) AuthOrchestratorOption {
	return func(o *authOrchestrator) {
		if t != nil {
			o.tracker = t
		}
	}
}

// NewAuthOrchestrator creates a new auth orchestrator.
func NewAuthOrchestrator(
	users portsrepo.UserReader,
	verifier portssvc.PasswordVerifierSvc,
	reconciler portssvc.IdentityReconcilerSvc,
	sessions portssvc.SessionIssuerSvc,
	opts ...AuthOrchestratorOption,
) portssvc.AuthOrchestratorSvc {
	o := &authOrchestrator{
		users:      users,
		verifier:   verifier,
		reconciler: reconciler,
		sessions:   sessions,
		retry:      DefaultRegistrationRetry(500 * time.Millisecond),
		metrics:    noopAuthMetrics{},
		tracker:    noopEventTracker{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *authOrchestrator) Register(ctx context.Context, email, password, displayName string) (result *domain.AuthResult, err error) {
	defer func() { o.record(MethodRegister, err) }()

	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", apperrors.ErrValidation)
	}

	hash, err := o.verifier.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := o.reconciler.Register(ctx, domain.Identity{
		Email:        email,
		DisplayName:  displayName,
		Provider:     domain.ProviderEmail,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	return o.issue(ctx, user, true, MethodRegister)
}

func (o *authOrchestrator) CheckUser(ctx context.Context, email string) (*domain.User, bool, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, false, err
	}
	user, err := o.findUser(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return user, user != nil, nil
}

func (o *authOrchestrator) SocialSignIn(ctx context.Context, profile domain.SocialProfile) (result *domain.AuthResult, err error) {
	defer func() { o.record(MethodSocial, err) }()

	if !profile.Provider.IsSocial() {
		return nil, fmt.Errorf("%w: %q is not a social provider", apperrors.ErrInvalidIdentity, profile.Provider)
	}
	if domain.NormalizeEmail(profile.Email) == "" {
		o.LogWarn(ctx, "Social profile has no email", slog.String("provider", string(profile.Provider)))
		return nil, apperrors.ErrInvalidIdentity
	}
	if !profile.EmailVerified {
		// Merging is keyed on email, so an unverified address could claim another account.
		o.LogWarn(ctx, "Social profile email is not verified", slog.String("provider", string(profile.Provider)))
		return nil, fmt.Errorf("%w: provider email not verified", apperrors.ErrInvalidIdentity)
	}

	user, created, err := o.reconciler.Reconcile(ctx, profile.ToIdentity())
	if err != nil {
		return nil, err
	}
	return o.issue(ctx, user, created, MethodSocial)
}

func (o *authOrchestrator) CredentialSignIn(ctx context.Context, email, password string) (result *domain.AuthResult, err error) {
	defer func() { o.record(MethodCredentials, err) }()

	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := o.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !user.HasPassword() {
		return nil, apperrors.ErrNoPasswordSet
	}

	switch res := o.verifier.Check(password, *user.PasswordHash, user.Email); res {
	case domain.VerifyOK:
	case domain.VerifyMalformedHash:
		o.LogWarn(ctx, "Stored password hash is malformed", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrInvalidPassword
	default:
		return nil, apperrors.ErrInvalidPassword
	}
	return o.issue(ctx, user, false, MethodCredentials)
}

// PasswordlessSignIn verifies secret before any write. Existing users are signed in
// directly; unknown emails are registered and then signed in under the retry policy.
func (o *authOrchestrator) PasswordlessSignIn(ctx context.Context, email, secret string) (result *domain.AuthResult, err error) {
	defer func() { o.record(MethodPasswordless, err) }()

	email, err = validateEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := o.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if user != nil {
		if err := o.verifyPasswordless(ctx, user, email, secret); err != nil {
			if errors.Is(err, apperrors.ErrAuthUnavailable) {
				return nil, err
			}
			o.LogInfo(ctx, "Passwordless secret rejected for existing user", slog.String("user_id", user.UserID))
			return nil, apperrors.ErrUseManualSignIn
		}
		return o.issue(ctx, user, false, MethodPasswordless)
	}

	if err := o.verifyPasswordless(ctx, nil, email, secret); err != nil {
		return nil, err
	}
	return o.registerAndSignIn(ctx, email)
}

func (o *authOrchestrator) RequestLoginLink(ctx context.Context, email string) (expiresAt time.Time, err error) {
	defer func() { o.record(MethodLoginLink, err) }()

	if o.links == nil || o.verifier.DeterministicTokensEnabled() {
		return time.Time{}, apperrors.ErrProviderNotConfigured
	}
	return o.links.RequestLink(ctx, email)
}

// registerAndSignIn runs register, re-fetch and issue as one composite under the
// retry policy. A lost create race continues as an existing user.
func (o *authOrchestrator) registerAndSignIn(ctx context.Context, email string) (*domain.AuthResult, error) {
	var (
		registered bool
		created    bool
		result     *domain.AuthResult
	)

	policy := o.retry
	policy.OnRetry = func(attempt int, err error) {
		o.metrics.RecordRegistrationRetry()
		o.LogWarn(ctx, "Passwordless registration attempt failed, retrying",
			slog.String("email", email), slog.Int("attempt", attempt), slog.String("error", err.Error()))
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		if !registered {
			_, err := o.reconciler.Register(ctx, o.passwordlessIdentity(email))
			switch {
			case err == nil:
				created = true
			case errors.Is(err, apperrors.ErrDuplicateEmail):
				o.LogDebug(ctx, "Concurrent passwordless registration, continuing as existing user", slog.String("email", email))
			case errors.Is(err, apperrors.ErrAuthUnavailable):
				return Retryable(err)
			default:
				return err
			}
			registered = true
		}

		user, err := o.users.FindUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return Retryable(fmt.Errorf("user not visible after registration: %w", err))
			}
			return Retryable(apperrors.Unavailable(err))
		}

		result, err = o.issue(ctx, user, created, MethodPasswordless)
		return err
	})
	if err == nil {
		return result, nil
	}

	if !registered {
		return nil, apperrors.Unavailable(err)
	}
	o.LogError(ctx, err, "Sign-in failed after passwordless registration", slog.String("email", email))
	return nil, fmt.Errorf("%w: %v", apperrors.ErrLoginFailedAfterRegistration, err)
}

func (o *authOrchestrator) passwordlessIdentity(email string) domain.Identity {
	identity := domain.Identity{Email: email, Provider: domain.ProviderEmail}
	if o.verifier.DeterministicTokensEnabled() {
		if hash, err := o.verifier.HashPassword(o.verifier.DeterministicToken(email)); err == nil {
			identity.PasswordHash = hash
		}
	}
	return identity
}

// verifyPasswordless checks secret for email. user is nil for a never-seen email.
// A rejected derived token is ErrInvalidPassword; a rejected link is ErrInvalidLoginLink.
func (o *authOrchestrator) verifyPasswordless(ctx context.Context, user *domain.User, email, secret string) error {
	if o.verifier.DeterministicTokensEnabled() {
		storedHash := ""
		if user != nil && user.HasPassword() {
			storedHash = *user.PasswordHash
		}
		if secret == "" || !o.verifier.Check(secret, storedHash, email).OK() {
			return apperrors.ErrInvalidPassword
		}
		return nil
	}
	if secret == "" {
		return apperrors.ErrInvalidLoginLink
	}
	if o.links == nil {
		return apperrors.ErrInvalidLoginLink
	}
	return o.links.Consume(ctx, email, secret)
}

// findUser returns nil without error when no user has email.
func (o *authOrchestrator) findUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := o.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, nil
	default:
		o.LogError(ctx, err, "Failed to look up user", slog.String("email", email))
		return nil, apperrors.Unavailable(err)
	}
}

func (o *authOrchestrator) issue(ctx context.Context, user *domain.User, created bool, method string) (*domain.AuthResult, error) {
	session, err := o.sessions.Issue(ctx, user)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}
	o.tracker.TrackSignIn(user.UserID, method, created)
	o.LogInfo(ctx, "User signed in",
		slog.String("user_id", user.UserID),
		slog.String("method", method),
		slog.Bool("created", created))
	return &domain.AuthResult{User: user, Session: session, Created: created}, nil
}

func (o *authOrchestrator) record(method string, err error) {
	o.metrics.RecordAttempt(method, Outcome(err))
}

// Outcome names the taxonomy entry err belongs to, for metric labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, apperrors.ErrNoPasswordSet):
		return "no_password_set"
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, apperrors.ErrUseManualSignIn):
		return "use_manual_sign_in"
	case errors.Is(err, apperrors.ErrInvalidLoginLink):
		return "invalid_login_link"
	case errors.Is(err, apperrors.ErrLoginFailedAfterRegistration):
		return "login_failed_after_registration"
	case errors.Is(err, apperrors.ErrProviderNotConfigured):
		return "provider_not_configured"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrAuthUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
