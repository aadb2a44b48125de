package ports

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Stores tabla de despacho tipo de ubicación → store de inventario.
// Un tipo sin entrada (NOT_ASSIGNED o desconocido) no participa en movimientos.
type Stores map[entity.LocationKind]repository.LocationInventoryRepository

// Get devuelve el store del tipo o ErrInvalidInput si no hay uno registrado.
func (s Stores) Get(kind entity.LocationKind) (repository.LocationInventoryRepository, error) {
	store, ok := s[kind]
	if !ok || store == nil {
		return nil, domain.Invalid("tipo de ubicación no soportado: %q", kind)
	}
	return store, nil
}

// TotalForProduct suma la cantidad del producto en todos los tipos registrados.
// Dentro de una transacción ve las escrituras propias no confirmadas.
func (s Stores) TotalForProduct(ctx context.Context, productID string) (int, error) {
	total := 0
	for _, kind := range entity.LocationKinds {
		store, ok := s[kind]
		if !ok {
			continue
		}
		n, err := store.SumByProduct(ctx, productID)
		if err != nil {
			return 0, fmt.Errorf("sum %s: %w", kind, err)
		}
		total += n
	}
	return total, nil
}

// Repos repositorios atados a una misma transacción (o al pool para lecturas).
type Repos struct {
	Stores    Stores
	Movements repository.StockMovementRepository
	Outbox    repository.OutboxRepository
	Locations repository.LocationRepository
	Products  repository.ProductRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Si fn devuelve error se hace Rollback; si no, Commit. Conflictos de serialización o
// deadlocks se devuelven envueltos en domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
