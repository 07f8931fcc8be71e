package repositories

import (
	"context"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByEmail retrieves a user by normalized email. Returns apperrors.ErrNotFound if absent.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// CreateUser persists a new user. The email unique constraint is enforced by
	// the storage layer; a violation returns apperrors.ErrDuplicateEmail.
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)

	// UpdateUser applies profile changes and returns the stored row.
	UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error)
}

// UserRepositoryFacade combines all user-related repository interfaces.
// It is the credential store used by the auth flow.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
