package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// LocationInventoryRepository puerto de persistencia de inventario por ubicación.
// Existe una implementación por tipo de ubicación (misma forma, distinta tabla).
// Los métodos Get devuelven (nil, nil) cuando el registro no existe.
type LocationInventoryRepository interface {
	Kind() entity.LocationKind
	GetByID(ctx context.Context, id string) (*entity.LocationInventory, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.LocationInventory, error)
	FindByLocationAndProduct(ctx context.Context, locationID, productID string) (*entity.LocationInventory, error)
	Create(ctx context.Context, inv *entity.LocationInventory) error
	UpdateQuantity(ctx context.Context, inv *entity.LocationInventory) error
	// SumByProduct total de unidades del producto en todas las ubicaciones de este tipo.
	SumByProduct(ctx context.Context, productID string) (int, error)
}
