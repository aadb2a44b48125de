package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("inventario insuficiente")
)

// InsufficientInventoryError detalle de una reducción rechazada.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientInventoryError struct {
	Requested int
	Current   int
	Transfer  bool
}

func (e *InsufficientInventoryError) Error() string {
	if e.Transfer {
		return fmt.Sprintf("no se pueden transferir %d unidades: el origen solo tiene %d disponibles", e.Requested, e.Current)
	}
	return fmt.Sprintf("no se puede reducir la cantidad en %d: cantidad actual %d", e.Requested, e.Current)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Invalid envuelve ErrInvalidInput con un mensaje legible para el cliente.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound envuelve ErrNotFound indicando qué recurso falta.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
