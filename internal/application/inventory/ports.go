package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// EventRecorder escribe el evento de un movimiento dentro de la misma transacción.
type EventRecorder interface {
	Record(ctx context.Context, repos ports.Repos, movement *entity.StockMovement) error
}

// AuditPDFGenerator genera el PDF del log de auditoría.
type AuditPDFGenerator interface {
	GenerateAuditLog(entries []dto.StockMovementResponse, filter repository.MovementFilter, generatedAt time.Time) ([]byte, error)
}
