package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/SscSPs/storefront_backend/internal/models"
	"github.com/SscSPs/storefront_backend/internal/utils/mapping"
)

type loginLinkRepository struct {
	db *sql.DB
}

func newLoginLinkRepository(db *sql.DB) portsrepo.LoginLinkRepository {
	return &loginLinkRepository{db: db}
}

func (r *loginLinkRepository) CreateLoginLink(ctx context.Context, link domain.LoginLink) error {
	m := mapping.ToModelLoginLink(link)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_links (id, email, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, domain.NormalizeEmail(m.Email), m.TokenHash, toMillis(m.CreatedAt), toMillis(m.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create login link: %w", err)
	}
	return nil
}

// ConsumeLoginLink marks the link used in a single statement, so a link can be
// redeemed at most once even under concurrent requests.
func (r *loginLinkRepository) ConsumeLoginLink(ctx context.Context, tokenHash, email string, now time.Time) (*domain.LoginLink, error) {
	var (
		m         models.LoginLink
		createdAt int64
		expiresAt int64
		usedAt    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE login_links
		SET used_at = ?
		WHERE token_hash = ? AND email = ? AND used_at IS NULL AND expires_at > ?
		RETURNING id, email, token_hash, created_at, expires_at, used_at`,
		toMillis(now), tokenHash, domain.NormalizeEmail(email), toMillis(now),
	).Scan(&m.ID, &m.Email, &m.TokenHash, &createdAt, &expiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume login link: %w", err)
	}

	m.CreatedAt = fromMillis(createdAt)
	m.ExpiresAt = fromMillis(expiresAt)
	if usedAt.Valid {
		t := fromMillis(usedAt.Int64)
		m.UsedAt = &t
	}
	link := mapping.ToDomainLoginLink(m)
	return &link, nil
}

func (r *loginLinkRepository) DeleteExpiredLoginLinks(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_links WHERE expires_at <= ?`, toMillis(before))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired login links: %w", err)
	}
	return res.RowsAffected()
}
