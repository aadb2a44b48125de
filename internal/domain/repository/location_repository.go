package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// LocationRepository puerto de lectura de los registros de ubicaciones (bins, racks, máquinas).
type LocationRepository interface {
	GetByID(ctx context.Context, kind entity.LocationKind, id string) (*entity.Location, error)
	// CodesByIDs resuelve en lote id → código legible para un tipo de ubicación.
	CodesByIDs(ctx context.Context, kind entity.LocationKind, ids []string) (map[string]string, error)
}
