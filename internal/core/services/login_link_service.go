package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/utils"
	"github.com/google/uuid"
)

const loginLinkTokenBytes = 32

// loginLinkService implements LoginLinkSvc.
type loginLinkService struct {
	BaseService
	links    portsrepo.LoginLinkRepository
	notifier portssvc.LoginLinkNotifier
	ttl      time.Duration
	baseURL  string
}

// LoginLinkOption configures a loginLinkService.
type LoginLinkOption func(*loginLinkService)

// WithLoginLinkClock overrides the clock used for issue and expiry checks.
func WithLoginLinkClock(now func() time.Time) LoginLinkOption {
	return func(s *loginLinkService) {
		s.now = now
	}
}

// NewLoginLinkService creates a new login link service.
func NewLoginLinkService(links portsrepo.LoginLinkRepository, notifier portssvc.LoginLinkNotifier, ttl time.Duration, baseURL string, opts ...LoginLinkOption) portssvc.LoginLinkSvc {
	s := &loginLinkService{links: links, notifier: notifier, ttl: ttl, baseURL: baseURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *loginLinkService) RequestLink(ctx context.Context, email string) (time.Time, error) {
	email, err := validateEmail(email)
	if err != nil {
		return time.Time{}, err
	}

	token, tokenHash, err := utils.NewOneTimeToken(loginLinkTokenBytes)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to generate login link token: %w", err)
	}

	now := s.Now()
	link := domain.LoginLink{
		ID:        uuid.NewString(),
		Email:     email,
		TokenHash: tokenHash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.links.CreateLoginLink(ctx, link); err != nil {
		s.LogError(ctx, err, "Failed to store login link", slog.String("email", email))
		return time.Time{}, apperrors.Unavailable(err)
	}

	linkURL, err := buildLoginLinkURL(s.baseURL, email, token)
	if err != nil {
		return time.Time{}, err
	}
	delivery := domain.LoginLinkDelivery{Email: email, URL: linkURL, ExpiresAt: link.ExpiresAt}
	if err := s.notifier.Deliver(ctx, delivery); err != nil {
		s.LogError(ctx, err, "Failed to deliver login link", slog.String("email", email))
		return time.Time{}, apperrors.Unavailable(err)
	}

	s.LogInfo(ctx, "Login link issued", slog.String("email", email), slog.Time("expires_at", link.ExpiresAt))
	return link.ExpiresAt, nil
}

func (s *loginLinkService) Consume(ctx context.Context, email, token string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || token == "" {
		return apperrors.ErrInvalidLoginLink
	}

	_, err := s.links.ConsumeLoginLink(ctx, utils.HashOneTimeToken(token), email, s.Now())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.ErrInvalidLoginLink
	default:
		s.LogError(ctx, err, "Failed to consume login link", slog.String("email", email))
		return apperrors.Unavailable(err)
	}
}

func (s *loginLinkService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.links.DeleteExpiredLoginLinks(ctx, s.Now())
	if err != nil {
		return 0, apperrors.Unavailable(err)
	}
	s.LogInfo(ctx, "Pruned expired login links", slog.Int64("count", n))
	return n, nil
}

func buildLoginLinkURL(base, email, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid login link base url: %w", err)
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
