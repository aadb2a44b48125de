package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// DeadLetterUseCase vía del operador para eventos que agotaron sus intentos.
type DeadLetterUseCase struct {
	repo repository.OutboxRepository
	now  func() time.Time
}

// NewDeadLetterUseCase construye el caso de uso.
func NewDeadLetterUseCase(repo repository.OutboxRepository) *DeadLetterUseCase {
	return &DeadLetterUseCase{repo: repo, now: time.Now}
}

// List eventos en DEAD_LETTER, más antiguos primero.
func (uc *DeadLetterUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.OutboxEventResponse, error) {
	page.DefaultPage()
	events, err := uc.repo.ListDeadLetters(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OutboxEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toOutboxResponse(e))
	}
	return out, nil
}

// Retry devuelve el evento a PENDING para el próximo tick del publicador.
func (uc *DeadLetterUseCase) Retry(ctx context.Context, id string) error {
	ok, err := uc.repo.Requeue(ctx, id, uc.now())
	if err != nil {
		return fmt.Errorf("requeue: %w", err)
	}
	if ok {
		return nil
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return domain.NotFound("evento %s", id)
	}
	return fmt.Errorf("%w: el evento está en estado %s", domain.ErrConflict, e.Status)
}

func toOutboxResponse(e *entity.OutboxEvent) dto.OutboxEventResponse {
	return dto.OutboxEventResponse{
		ID:              e.ID,
		Topic:           e.Topic,
		EventType:       e.EventType,
		EntityType:      e.EntityType,
		EntityID:        e.EntityID,
		PartitionKey:    e.PartitionKey,
		Status:          string(e.Status),
		Payload:         e.Payload,
		CreatedAt:       e.CreatedAt,
		PublishAttempts: e.PublishAttempts,
		LastError:       e.LastError,
		NextAttemptAt:   e.NextAttemptAt,
	}
}
