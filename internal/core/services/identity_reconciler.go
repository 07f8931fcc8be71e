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
	"github.com/google/uuid"
)

// identityReconciler implements IdentityReconcilerSvc. Reconciliation is an upsert
// keyed on email; the store's unique constraint decides concurrent creates.
type identityReconciler struct {
	BaseService
	users portsrepo.UserRepositoryFacade
}

// ReconcilerOption configures an identityReconciler.
type ReconcilerOption func(*identityReconciler)

// WithReconcilerClock overrides the clock used for createdAt/updatedAt.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *identityReconciler) {
		r.now = now
	}
}

// NewIdentityReconciler creates a new reconciler backed by users.
func NewIdentityReconciler(users portsrepo.UserRepositoryFacade, opts ...ReconcilerOption) portssvc.IdentityReconcilerSvc {
	r := &identityReconciler{users: users}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *identityReconciler) Reconcile(ctx context.Context, identity domain.Identity) (*domain.User, bool, error) {
	identity, err := normalizeIdentity(identity)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.users.FindUserByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		updated, err := r.refresh(ctx, existing, identity)
		return updated, false, err
	case !errors.Is(err, apperrors.ErrNotFound):
		r.LogError(ctx, err, "Failed to look up user for reconciliation", slog.String("email", identity.Email))
		return nil, false, apperrors.Unavailable(err)
	}

	created, err := r.create(ctx, identity)
	if err == nil {
		r.LogInfo(ctx, "Created user from identity",
			slog.String("user_id", created.UserID),
			slog.String("provider", string(created.Provider)))
		return created, true, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicateEmail) {
		return nil, false, err
	}

	// Lost a concurrent create for the same email. The winner's row is authoritative.
	r.LogDebug(ctx, "Concurrent create detected, merging into existing user", slog.String("email", identity.Email))
	existing, err = r.users.FindUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, false, apperrors.Unavailable(err)
	}
	updated, err := r.refresh(ctx, existing, identity)
	return updated, false, err
}

func (r *identityReconciler) Register(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	identity, err := normalizeIdentity(identity)
	if err != nil {
		return nil, err
	}
	return r.create(ctx, identity)
}

func (r *identityReconciler) create(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	now := r.Now()
	user := domain.User{
		UserID:        uuid.NewString(),
		Email:         identity.Email,
		Provider:      identity.Provider,
		ProviderID:    identity.ProviderID,
		DisplayName:   identity.DisplayName,
		AvatarURL:     identity.AvatarURL,
		EmailVerified: identity.Provider != domain.ProviderEmail,
		Timestamps:    domain.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	if identity.PasswordHash != "" {
		hash := identity.PasswordHash
		user.PasswordHash = &hash
	}

	created, err := r.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			return nil, err
		}
		r.LogError(ctx, err, "Failed to create user", slog.String("email", identity.Email))
		return nil, apperrors.Unavailable(err)
	}
	return created, nil
}

// refresh updates profile metadata only. provider, providerId, passwordHash and
// emailVerified keep the values from first establishment.
func (r *identityReconciler) refresh(ctx context.Context, user *domain.User, identity domain.Identity) (*domain.User, error) {
	update := domain.UserUpdate{UpdatedAt: r.Now()}
	if identity.DisplayName != "" {
		update.DisplayName = &identity.DisplayName
	}
	if identity.AvatarURL != "" {
		update.AvatarURL = &identity.AvatarURL
	}

	updated, err := r.users.UpdateUser(ctx, user.UserID, update)
	if err != nil {
		r.LogError(ctx, err, "Failed to refresh user profile", slog.String("user_id", user.UserID))
		return nil, apperrors.Unavailable(err)
	}
	return updated, nil
}

func normalizeIdentity(identity domain.Identity) (domain.Identity, error) {
	identity.Email = domain.NormalizeEmail(identity.Email)
	if identity.Email == "" {
		return identity, apperrors.ErrInvalidIdentity
	}
	if identity.Provider == "" {
		identity.Provider = domain.ProviderEmail
	}
	if !identity.Provider.IsValid() {
		return identity, fmt.Errorf("%w: unknown provider %q", apperrors.ErrInvalidIdentity, identity.Provider)
	}
	return identity, nil
}
