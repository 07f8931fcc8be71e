package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/SscSPs/storefront_backend/internal/models"
	"github.com/SscSPs/storefront_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db DBTX) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const (
	usersTable = "users"

	selectUserFields = `id, email, password_hash, provider, provider_id, display_name, avatar_url, email_verified, created_at, updated_at`

	findUserByEmailQuery = `SELECT ` + selectUserFields + ` FROM ` + usersTable + ` WHERE email = $1`

	findUserByIDQuery = `SELECT ` + selectUserFields + ` FROM ` + usersTable + ` WHERE id = $1`

	insertUserQuery = `
		INSERT INTO ` + usersTable + ` (
			id, email, password_hash, provider, provider_id,
			display_name, avatar_url, email_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + selectUserFields

	updateUserProfileQuery = `
		UPDATE ` + usersTable + `
		SET
			display_name = COALESCE($2, display_name),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = $4
		WHERE id = $1
		RETURNING ` + selectUserFields
)

func scanUser(row pgx.Row) (*domain.User, error) {
	var m models.User
	if err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.PasswordHash,
		&m.Provider,
		&m.ProviderID,
		&m.DisplayName,
		&m.AvatarURL,
		&m.EmailVerified,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.Pool.QueryRow(ctx, findUserByEmailQuery, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := scanUser(r.Pool.QueryRow(ctx, findUserByIDQuery, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id %s: %w", userID, err)
	}
	return user, nil
}

// CreateUser inserts under SERIALIZABLE isolation; the email unique constraint
// decides concurrent creates and the loser gets ErrDuplicateEmail.
func (r *PgxUserRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	m := mapping.ToModelUser(user)
	m.Email = domain.NormalizeEmail(m.Email)

	var created *domain.User
	err := r.serializable(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanUser(tx.QueryRow(ctx, insertUserQuery,
			m.UserID, m.Email, m.PasswordHash, m.Provider, m.ProviderID,
			m.DisplayName, m.AvatarURL, m.EmailVerified, m.CreatedAt, m.UpdatedAt,
		))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error) {
	var updated *domain.User
	err := r.serializable(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanUser(tx.QueryRow(ctx, updateUserProfileQuery, userID, update.DisplayName, update.AvatarURL, update.UpdatedAt))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return updated, nil
}
