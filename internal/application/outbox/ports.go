package outbox

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// MessageBus puerto de salida hacia el bus de mensajes (Kafka en producción).
type MessageBus interface {
	Send(ctx context.Context, topic, key string, value []byte) error
}

// Store operaciones del outbox que usa el publicador. Cada llamada es una transacción corta.
type Store interface {
	FetchPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, at time.Time) (bool, error)
	RecordFailure(ctx context.Context, id string, failure repository.OutboxFailure) error
}

// Metrics contadores del publicador.
type Metrics interface {
	Published(topic string)
	Failed(topic string)
	DeadLettered(topic string)
	Fetched(n int)
	TickDuration(d time.Duration)
}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) Published(string)           {}
func (NopMetrics) Failed(string)              {}
func (NopMetrics) DeadLettered(string)        {}
func (NopMetrics) Fetched(int)                {}
func (NopMetrics) TickDuration(time.Duration) {}
