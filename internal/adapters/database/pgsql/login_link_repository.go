package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/SscSPs/storefront_backend/internal/models"
	"github.com/SscSPs/storefront_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxLoginLinkRepository struct {
	BaseRepository
}

func newPgxLoginLinkRepository(db DBTX) portsrepo.LoginLinkRepository {
	return &PgxLoginLinkRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.LoginLinkRepository = (*PgxLoginLinkRepository)(nil)

const (
	loginLinksTable = "login_links"

	selectLoginLinkFields = `id, email, token_hash, created_at, expires_at, used_at`

	insertLoginLinkQuery = `
		INSERT INTO ` + loginLinksTable + ` (id, email, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	consumeLoginLinkQuery = `
		UPDATE ` + loginLinksTable + `
		SET used_at = $3
		WHERE token_hash = $1 AND email = $2 AND used_at IS NULL AND expires_at > $3
		RETURNING ` + selectLoginLinkFields

	deleteExpiredLoginLinksQuery = `
		DELETE FROM ` + loginLinksTable + `
		WHERE expires_at <= $1
	`
)

func (r *PgxLoginLinkRepository) CreateLoginLink(ctx context.Context, link domain.LoginLink) error {
	m := mapping.ToModelLoginLink(link)
	_, err := r.Pool.Exec(ctx, insertLoginLinkQuery, m.ID, domain.NormalizeEmail(m.Email), m.TokenHash, m.CreatedAt, m.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create login link: %w", err)
	}
	return nil
}

// ConsumeLoginLink marks the link used in a single UPDATE so it can be redeemed once.
func (r *PgxLoginLinkRepository) ConsumeLoginLink(ctx context.Context, tokenHash, email string, now time.Time) (*domain.LoginLink, error) {
	var m models.LoginLink
	err := r.Pool.QueryRow(ctx, consumeLoginLinkQuery, tokenHash, domain.NormalizeEmail(email), now).Scan(
		&m.ID,
		&m.Email,
		&m.TokenHash,
		&m.CreatedAt,
		&m.ExpiresAt,
		&m.UsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume login link: %w", err)
	}
	link := mapping.ToDomainLoginLink(m)
	return &link, nil
}

func (r *PgxLoginLinkRepository) DeleteExpiredLoginLinks(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, deleteExpiredLoginLinksQuery, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired login links: %w", err)
	}
	return tag.RowsAffected(), nil
}
