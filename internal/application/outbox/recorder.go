package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StockMovementPayload cuerpo del evento de un movimiento. Los totales son la suma del
// producto en todas las ubicaciones dentro de la misma transacción del movimiento.
type StockMovementPayload struct {
	StockMovementID       string    `json:"stock_movement_id"`
	ItemID                string    `json:"item_id"`
	SKU                   string    `json:"sku"`
	LocationType          string    `json:"location_type"`
	QuantityChange        int       `json:"quantity_change"`
	Reason                string    `json:"reason"`
	At                    time.Time `json:"at"`
	FromBoxID             *string   `json:"from_box_id"`
	ToBoxID               *string   `json:"to_box_id"`
	PreviousQuantity      int       `json:"previous_quantity"`
	CurrentQuantity       int       `json:"current_quantity"`
	TotalPreviousQuantity int       `json:"total_previous_quantity"`
	TotalCurrentQuantity  int       `json:"total_current_quantity"`
	ReorderPoint          int       `json:"reorder_point"`
	ActorID               *string   `json:"actor_id"`
}

// Recorder escribe la fila del outbox de cada movimiento. Nunca toca el bus.
type Recorder struct {
	topic string
	lower cases.Caser
}

// NewRecorder construye el recorder para el tópico dado.
func NewRecorder(topic string) *Recorder {
	return &Recorder{topic: topic, lower: cases.Lower(language.Und)}
}

// Record debe llamarse con los repos de la transacción del movimiento: si falla, la tx
// completa se revierte (cantidad, ledger y outbox).
func (r *Recorder) Record(ctx context.Context, repos ports.Repos, m *entity.StockMovement) error {
	product, err := repos.Products.GetByID(ctx, m.ItemID)
	if err != nil {
		return fmt.Errorf("outbox product: %w", err)
	}
	if product == nil {
		return domain.NotFound("producto %s", m.ItemID)
	}

	total, err := repos.Stores.TotalForProduct(ctx, m.ItemID)
	if err != nil {
		return fmt.Errorf("outbox total: %w", err)
	}

	fromCode, err := r.locationCode(ctx, repos, m.FromKind(), m.FromLocationID)
	if err != nil {
		return err
	}
	toCode, err := r.locationCode(ctx, repos, m.ToKind(), m.ToLocationID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(StockMovementPayload{
		StockMovementID:       m.ID,
		ItemID:                m.ItemID,
		SKU:                   product.SKU,
		LocationType:          string(m.LocationKind),
		QuantityChange:        m.QuantityChange,
		Reason:                r.lower.String(string(m.Reason)),
		At:                    m.At,
		FromBoxID:             fromCode,
		ToBoxID:               toCode,
		PreviousQuantity:      m.PreviousQuantity,
		CurrentQuantity:       m.CurrentQuantity,
		TotalPreviousQuantity: total - m.QuantityChange,
		TotalCurrentQuantity:  total,
		ReorderPoint:          product.ReorderPoint,
		ActorID:               m.ActorID,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	event := &entity.OutboxEvent{
		ID:            uuid.New().String(),
		Topic:         r.topic,
		EventType:     entity.EventTypeCreated,
		EntityType:    entity.EntityTypeStockMovement,
		EntityID:      m.ID,
		PartitionKey:  m.ItemID,
		Payload:       payload,
		Status:        entity.OutboxPending,
		CreatedAt:     m.At,
		NextAttemptAt: m.At,
	}
	if err := repos.Outbox.Create(ctx, event); err != nil {
		return fmt.Errorf("record outbox event: %w", err)
	}
	return nil
}

// locationCode código legible de la ubicación; nil si no hay id o no se encuentra.
func (r *Recorder) locationCode(ctx context.Context, repos ports.Repos, kind entity.LocationKind, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	codes, err := repos.Locations.CodesByIDs(ctx, kind, []string{*id})
	if err != nil {
		return nil, fmt.Errorf("outbox location code: %w", err)
	}
	code, ok := codes[*id]
	if !ok {
		return nil, nil
	}
	return &code, nil
}
