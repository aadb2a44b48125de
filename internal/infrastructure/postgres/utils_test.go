package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

func TestAsConflict(t *testing.T) {
	deadlock := fmt.Errorf("update: %w", &pgconn.PgError{Code: codeDeadlockDetected})
	serialization := &pgconn.PgError{Code: codeSerializationFailure}
	other := errors.New("boom")

	assert.ErrorIs(t, asConflict(deadlock), domain.ErrConflict)
	assert.ErrorIs(t, asConflict(serialization), domain.ErrConflict)
	assert.Equal(t, other, asConflict(other), "errores no transitorios no se envuelven")
	assert.NoError(t, asConflict(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: codeCheckViolation}))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/x?sslmode=disable", migrateURL("postgres://u:p@db:5432/x?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/x", migrateURL("postgresql://u@db/x"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestIsUUIDAndInvalidText(t *testing.T) {
	assert.True(t, isUUID("6f1c2a4e-7d3b-4c55-9e21-0b8a7f3d9c10"))
	assert.False(t, isUUID("not-a-uuid"))
	assert.False(t, isUUID(""))
	assert.True(t, isInvalidText(fmt.Errorf("get: %w", &pgconn.PgError{Code: codeInvalidTextRepresentation})))
	assert.False(t, isInvalidText(&pgconn.PgError{Code: codeCheckViolation}))
}
