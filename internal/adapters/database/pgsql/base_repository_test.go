package pgsql

import (
	"fmt"
	"testing"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}
	wrapped := apperrors.NewAppError(500, "failed to commit transaction", fmt.Errorf("insert: %w", unique))

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgSerializationFailure}))
	assert.False(t, isUniqueViolation(fmt.Errorf("connection reset")))
	assert.Equal(t, "", pgErrorCode(nil))
}
