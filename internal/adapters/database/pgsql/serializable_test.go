package pgsql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx fails Commit with the queued errors, then succeeds.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.commits++
	if len(t.db.commitErrs) > 0 {
		err := t.db.commitErrs[0]
		t.db.commitErrs = t.db.commitErrs[1:]
		return err
	}
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	t.db.queries++
	return t.db.row
}

type fakeDB struct {
	begins     int
	commits    int
	queries    int
	commitErrs []error
	row        pgx.Row
}

func (d *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("unexpected Exec")
}

func (d *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return d.row
}

func (d *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	d.begins++
	return &fakeTx{db: d}, nil
}

// userRow scans a fixed users row in selectUserFields order.
type userRow struct {
	id, email string
	updated   time.Time
}

func (r userRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch v := d.(type) {
		case *string:
			switch i {
			case 0:
				*v = r.id
			case 1:
				*v = r.email
			case 3:
				*v = string(domain.ProviderEmail)
			default:
				*v = ""
			}
		case **string:
			*v = nil
		case *bool:
			*v = false
		case *time.Time:
			*v = r.updated
		}
	}
	return nil
}

func serializationFailure() error {
	return &pgconn.PgError{Code: pgSerializationFailure, Message: "could not serialize access due to concurrent update"}
}

func TestSerializable_RerunsAfterSerializationFailure(t *testing.T) {
	db := &fakeDB{commitErrs: []error{serializationFailure()}}
	repo := &BaseRepository{Pool: db}

	calls := 0
	err := repo.serializable(context.Background(), func(pgx.Tx) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, db.begins)
	assert.Equal(t, 2, db.commits)
}

func TestSerializable_GivesUpAfterBoundedAttempts(t *testing.T) {
	db := &fakeDB{}
	repo := &BaseRepository{Pool: db}

	calls := 0
	err := repo.serializable(context.Background(), func(pgx.Tx) error {
		calls++
		return serializationFailure()
	})

	assert.True(t, isSerializationFailure(err))
	assert.Equal(t, serializableAttempts, calls)
	assert.Equal(t, 0, db.commits)
}

func TestSerializable_DoesNotRerunOtherErrors(t *testing.T) {
	db := &fakeDB{commitErrs: []error{&pgconn.PgError{Code: pgUniqueViolation}}}
	repo := &BaseRepository{Pool: db}

	calls := 0
	err := repo.serializable(context.Background(), func(pgx.Tx) error {
		calls++
		return nil
	})

	assert.True(t, isUniqueViolation(err))
	assert.Equal(t, 1, calls)
}

func TestSerializable_StopsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db := &fakeDB{}
	repo := &BaseRepository{Pool: db}

	calls := 0
	err := repo.serializable(ctx, func(pgx.Tx) error {
		calls++
		cancel()
		return serializationFailure()
	})

	assert.True(t, isSerializationFailure(err))
	assert.Equal(t, 1, calls)
}

func TestUpdateUser_ConcurrentUpdateConflictIsRetried(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	db := &fakeDB{
		commitErrs: []error{serializationFailure()},
		row:        userRow{id: "user-1", email: "bob@y.com", updated: now},
	}
	repo := newPgxUserRepository(db)

	name := "Bob"
	updated, err := repo.UpdateUser(context.Background(), "user-1", domain.UserUpdate{DisplayName: &name, UpdatedAt: now})

	require.NoError(t, err)
	assert.Equal(t, "user-1", updated.UserID)
	assert.Equal(t, "bob@y.com", updated.Email)
	assert.Equal(t, 2, db.queries, "the UPDATE ran again in a fresh transaction")
}
