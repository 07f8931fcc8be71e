package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/SscSPs/storefront_backend/internal/models"
	"github.com/SscSPs/storefront_backend/internal/utils/mapping"
)

const selectUserFields = `id, email, password_hash, provider, provider_id, display_name, avatar_url, email_verified, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func newUserRepository(db *sql.DB) portsrepo.UserRepositoryFacade {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		m         models.User
		hash      sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&m.UserID, &m.Email, &hash, &m.Provider, &m.ProviderID,
		&m.DisplayName, &m.AvatarURL, &m.EmailVerified, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if hash.Valid {
		m.PasswordHash = &hash.String
	}
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)

	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectUserFields+` FROM users WHERE email = ?`, domain.NormalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectUserFields+` FROM users WHERE id = ?`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id %s: %w", userID, err)
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	m := mapping.ToModelUser(user)
	m.Email = domain.NormalizeEmail(m.Email)

	var hash sql.NullString
	if m.PasswordHash != nil {
		hash = sql.NullString{String: *m.PasswordHash, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, provider, provider_id, display_name, avatar_url, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+selectUserFields,
		m.UserID, m.Email, hash, m.Provider, m.ProviderID, m.DisplayName, m.AvatarURL,
		m.EmailVerified, toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error) {
	var displayName, avatarURL sql.NullString
	if update.DisplayName != nil {
		displayName = sql.NullString{String: *update.DisplayName, Valid: true}
	}
	if update.AvatarURL != nil {
		avatarURL = sql.NullString{String: *update.AvatarURL, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET display_name = COALESCE(?, display_name),
		    avatar_url = COALESCE(?, avatar_url),
		    updated_at = ?
		WHERE id = ?
		RETURNING `+selectUserFields,
		displayName, avatarURL, toMillis(update.UpdatedAt), userID,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return updated, nil
}
