package services_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromURL(t *testing.T, raw string) (email, token string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("email"), u.Query().Get("token")
}

func TestLoginLinkService_RequestAndConsume(t *testing.T) {
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	notifier := &captureNotifier{}
	svc := services.NewLoginLinkService(repos.LoginLinkRepo, notifier, 15*time.Minute, "https://shop.example/finish")

	expiresAt, err := svc.RequestLink(ctx, " Gina@X.com ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	delivery := notifier.last()
	assert.Equal(t, "gina@x.com", delivery.Email)
	assert.Contains(t, delivery.URL, "https://shop.example/finish?")
	email, token := tokenFromURL(t, delivery.URL)
	assert.Equal(t, "gina@x.com", email)
	assert.Len(t, token, 64)

	assert.ErrorIs(t, svc.Consume(ctx, "other@x.com", token), apperrors.ErrInvalidLoginLink)
	assert.ErrorIs(t, svc.Consume(ctx, "gina@x.com", "wrong-token"), apperrors.ErrInvalidLoginLink)
	require.NoError(t, svc.Consume(ctx, "GINA@x.com", token))
	assert.ErrorIs(t, svc.Consume(ctx, "gina@x.com", token), apperrors.ErrInvalidLoginLink, "links are single use")
}

func TestLoginLinkService_Expiry(t *testing.T) {
	ctx := context.Background()
	repos, _ := newTestRepos(t)
	notifier := &captureNotifier{}
	now := time.Now().UTC()
	clock := func() time.Time { return now }
	svc := services.NewLoginLinkService(repos.LoginLinkRepo, notifier, time.Minute, "https://shop.example/finish",
		services.WithLoginLinkClock(clock))

	_, err := svc.RequestLink(ctx, "hank@x.com")
	require.NoError(t, err)
	_, token := tokenFromURL(t, notifier.last().URL)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, svc.Consume(ctx, "hank@x.com", token), apperrors.ErrInvalidLoginLink)

	n, err := svc.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLoginLinkService_Failures(t *testing.T) {
	ctx := context.Background()
	repos, _ := newTestRepos(t)

	svc := services.NewLoginLinkService(repos.LoginLinkRepo, &captureNotifier{}, time.Minute, "https://shop.example/finish")
	_, err := svc.RequestLink(ctx, "not-an-email")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentity)
	assert.ErrorIs(t, svc.Consume(ctx, "", "tok"), apperrors.ErrInvalidLoginLink)
	assert.ErrorIs(t, svc.Consume(ctx, "a@x.com", ""), apperrors.ErrInvalidLoginLink)

	broken := services.NewLoginLinkService(repos.LoginLinkRepo, &captureNotifier{err: errors.New("smtp down")}, time.Minute, "https://shop.example/finish")
	_, err = broken.RequestLink(ctx, "ivy@x.com")
	assert.ErrorIs(t, err, apperrors.ErrAuthUnavailable)
}
