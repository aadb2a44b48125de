package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OutboxFailure datos de un intento de publicación fallido.
type OutboxFailure struct {
	Error         string
	NextAttemptAt time.Time
	DeadLetter    bool
}

// OutboxRepository puerto del outbox transaccional.
// Create se usa dentro de la transacción del movimiento; el resto lo usa el publicador
// con transacciones cortas e independientes.
type OutboxRepository interface {
	Create(ctx context.Context, event *entity.OutboxEvent) error
	GetByID(ctx context.Context, id string) (*entity.OutboxEvent, error)
	// FetchPending eventos PENDING cuyo next_attempt_at ya venció, por created_at ascendente.
	FetchPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error)
	// MarkPublished fija published_at solo si aún es NULL; devuelve false si ya estaba publicado.
	MarkPublished(ctx context.Context, id string, at time.Time) (bool, error)
	RecordFailure(ctx context.Context, id string, failure OutboxFailure) error
	ListDeadLetters(ctx context.Context, limit, offset int) ([]*entity.OutboxEvent, error)
	// Requeue devuelve un evento DEAD_LETTER a PENDING con intentos en cero.
	Requeue(ctx context.Context, id string, at time.Time) (bool, error)
}
