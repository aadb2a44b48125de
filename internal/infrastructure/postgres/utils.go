package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

const (
	codeUniqueViolation           = "23505"
	codeCheckViolation            = "23514"
	codeInvalidTextRepresentation = "22P02"
	codeSerializationFailure      = "40001"
	codeDeadlockDetected          = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if pgCode(err) == codeUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isCheckViolation quantity >= 0 u otro CHECK rechazado por la BD.
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isUUID los ids de todas las tablas son UUID: cualquier otro valor no existe.
func isUUID(id string) bool {
	return uuid.Validate(id) == nil
}

// isInvalidText la BD rechazó un parámetro por formato (p. ej. un UUID mal formado).
func isInvalidText(err error) bool {
	return pgCode(err) == codeInvalidTextRepresentation
}

// isRetryable fallos transitorios de concurrencia: la operación completa puede reintentarse.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// asConflict envuelve errores reintentables en domain.ErrConflict; el resto pasa igual.
func asConflict(err error) error {
	if err == nil || errors.Is(err, domain.ErrConflict) || !isRetryable(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}
