package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
)

// LoginLinkRepository defines persistence for one-time login links.
type LoginLinkRepository interface {
	// CreateLoginLink persists a new link. Only the token hash is stored.
	CreateLoginLink(ctx context.Context, link domain.LoginLink) error

	// ConsumeLoginLink atomically marks the unused, unexpired link matching
	// tokenHash and email as used. Returns apperrors.ErrNotFound when no such link exists.
	ConsumeLoginLink(ctx context.Context, tokenHash, email string, now time.Time) (*domain.LoginLink, error)

	// DeleteExpiredLoginLinks removes links that expired before the given time.
	DeleteExpiredLoginLinks(ctx context.Context, before time.Time) (int64, error)
}
