package inventory

import "github.com/jhoicas/inventario-ledger/internal/domain"

// ApplyDelta calcula la nueva cantidad de un ajuste (servicio de dominio).
// Una reducción por debajo de cero devuelve *domain.InsufficientInventoryError.
func ApplyDelta(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return current, &domain.InsufficientInventoryError{Requested: -delta, Current: current}
	}
	return next, nil
}

// Withdraw retira qty unidades para una transferencia.
func Withdraw(current, qty int) (int, error) {
	if qty > current {
		return current, &domain.InsufficientInventoryError{Requested: qty, Current: current, Transfer: true}
	}
	return current - qty, nil
}
