package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/utils"
)

// sessionIssuer implements SessionIssuerSvc with HS256 JWTs. The server keeps
// no session state; tokens are discarded client-side or expire.
type sessionIssuer struct {
	BaseService
	secret string
	issuer string
	ttl    time.Duration
}

// SessionIssuerOption configures a sessionIssuer.
type SessionIssuerOption func(*sessionIssuer)

// WithSessionClock overrides the clock used to stamp issued tokens.
func WithSessionClock(now func() time.Time) SessionIssuerOption {
	return func(s *sessionIssuer) {
		s.now = now
	}
}

// NewSessionIssuer creates a new session issuer signing with secret.
func NewSessionIssuer(secret, issuer string, ttl time.Duration, opts ...SessionIssuerOption) portssvc.SessionIssuerSvc {
	s := &sessionIssuer{secret: secret, issuer: issuer, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionIssuer) Issue(ctx context.Context, user *domain.User) (domain.Session, error) {
	if user == nil || user.UserID == "" {
		return domain.Session{}, errors.New("cannot issue session without a user id")
	}

	// JWT numeric dates have second precision.
	issuedAt := s.Now().Truncate(time.Second)
	token, err := utils.GenerateJWT(user.UserID, s.secret, issuedAt, s.ttl, s.issuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign session token", slog.String("user_id", user.UserID))
		return domain.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return domain.Session{
		Token:     token,
		Subject:   user.UserID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.ttl),
	}, nil
}

func (s *sessionIssuer) Verify(token string) domain.SessionClaims {
	if token == "" {
		return domain.SessionClaims{}
	}
	claims, err := utils.ParseAndValidateJWT(token, s.secret, s.issuer)
	if err != nil {
		return domain.SessionClaims{}
	}

	result := domain.SessionClaims{Subject: claims.Subject, Valid: true}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result
}
