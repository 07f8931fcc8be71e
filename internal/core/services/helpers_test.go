package services_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/storefront_backend/internal/adapters/database/sqlite"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testBcryptCost = bcrypt.MinCost

func newTestRepos(t *testing.T) (portsrepo.RepositoryProvider, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return sqlite.NewRepositoryContainer(store), store
}

func countUsers(t *testing.T, store *sqlite.Store, email string) int {
	t.Helper()
	var n int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n))
	return n
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
	FindUserByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	CreateUserFn      func(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUserFn      func(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, user)
	}
	args := m.Called(ctx, user)
	var created *domain.User
	if args.Get(0) != nil {
		created = args.Get(0).(*domain.User)
	}
	return created, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, userID string, update domain.UserUpdate) (*domain.User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, userID, update)
	}
	args := m.Called(ctx, userID, update)
	var updated *domain.User
	if args.Get(0) != nil {
		updated = args.Get(0).(*domain.User)
	}
	return updated, args.Error(1)
}

// recordingMetrics captures AuthMetrics calls.
type recordingMetrics struct {
	mu       sync.Mutex
	attempts map[string]int
	retries  int
	verifies int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{attempts: make(map[string]int)}
}

func (r *recordingMetrics) RecordAttempt(method, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[method+"/"+outcome]++
}

func (r *recordingMetrics) RecordRegistrationRetry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *recordingMetrics) ObservePasswordVerify(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifies++
}

// recordingTracker captures sign-in events.
type recordingTracker struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTracker) TrackSignIn(userID, method string, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suffix := ""
	if created {
		suffix = "+created"
	}
	r.events = append(r.events, method+suffix)
}

// captureNotifier keeps the last delivered login link.
type captureNotifier struct {
	mu         sync.Mutex
	deliveries []domain.LoginLinkDelivery
	err        error
}

func (c *captureNotifier) Deliver(_ context.Context, d domain.LoginLinkDelivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.deliveries = append(c.deliveries, d)
	return nil
}

func (c *captureNotifier) last() domain.LoginLinkDelivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deliveries[len(c.deliveries)-1]
}
