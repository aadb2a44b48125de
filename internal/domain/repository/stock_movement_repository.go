package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementFilter filtros opcionales del log de auditoría. Campos nil o vacíos no filtran.
type MovementFilter struct {
	Search  string // coincide con nombre o SKU del producto (sin distinguir mayúsculas)
	ActorID *string
	Reason  *entity.MovementReason
	From    *time.Time
	To      *time.Time
}

// StockMovementRepository puerto del ledger de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve una página (más reciente primero) y el total de filas.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, int, error)
	ListAllByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
	Search(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.StockMovementView, int, error)
	// UnitsSoldSince suma de unidades vendidas (reason SALE) por producto desde la fecha dada.
	UnitsSoldSince(ctx context.Context, since time.Time) (map[string]int, error)
}
