package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/SscSPs/storefront_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuer_IssueAndVerify(t *testing.T) {
	issuer := services.NewSessionIssuer("test-secret", "storefront-test", time.Hour)
	user := &domain.User{UserID: "user-1"}

	session, err := issuer.Issue(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "user-1", session.Subject)
	assert.Equal(t, time.Hour, session.ExpiresAt.Sub(session.IssuedAt))

	claims := issuer.Verify(session.Token)
	assert.True(t, claims.Valid)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(session.ExpiresAt))
}

func TestSessionIssuer_RejectsInvalidTokens(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{UserID: "user-1"}
	issuer := services.NewSessionIssuer("test-secret", "storefront-test", time.Hour)

	expired := services.NewSessionIssuer("test-secret", "storefront-test", time.Hour,
		services.WithSessionClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	expiredSession, err := expired.Issue(ctx, user)
	require.NoError(t, err)

	foreign := services.NewSessionIssuer("other-secret", "storefront-test", time.Hour)
	foreignSession, err := foreign.Issue(ctx, user)
	require.NoError(t, err)

	otherIssuer := services.NewSessionIssuer("test-secret", "someone-else", time.Hour)
	otherIssuerSession, err := otherIssuer.Issue(ctx, user)
	require.NoError(t, err)

	valid, err := issuer.Issue(ctx, user)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":         "",
		"garbage":       "not.a.jwt",
		"expired":       expiredSession.Token,
		"bad signature": foreignSession.Token,
		"wrong issuer":  otherIssuerSession.Token,
		"tampered":      valid.Token[:len(valid.Token)-2] + "xx",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims := issuer.Verify(token)
			assert.False(t, claims.Valid)
			assert.Empty(t, claims.Subject)
		})
	}
}

func TestSessionIssuer_RequiresUserID(t *testing.T) {
	issuer := services.NewSessionIssuer("test-secret", "storefront-test", time.Hour)
	_, err := issuer.Issue(context.Background(), &domain.User{})
	assert.Error(t, err)
	_, err = issuer.Issue(context.Background(), nil)
	assert.Error(t, err)
}
