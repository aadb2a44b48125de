package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo outbox transaccional sobre PostgreSQL (usable con pool o tx).
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

const outboxColumns = `id, topic, event_type, entity_type, entity_id, partition_key, payload, status,
	created_at, published_at, publish_attempts, last_error, next_attempt_at`

// Create inserta el evento. Debe llamarse con la tx del movimiento.
func (r *OutboxRepo) Create(ctx context.Context, e *entity.OutboxEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = entity.OutboxPending
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = e.CreatedAt
	}
	query := `
		INSERT INTO event_outbox (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Topic, e.EventType, e.EntityType, e.EntityID, e.PartitionKey, []byte(e.Payload),
		string(e.Status), e.CreatedAt, e.PublishedAt, e.PublishAttempts, e.LastError, e.NextAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("create outbox event: %w", err)
	}
	return nil
}

func scanOutbox(row pgx.Row) (*entity.OutboxEvent, error) {
	var (
		e       entity.OutboxEvent
		status  string
		payload []byte
	)
	if err := row.Scan(
		&e.ID, &e.Topic, &e.EventType, &e.EntityType, &e.EntityID, &e.PartitionKey, &payload, &status,
		&e.CreatedAt, &e.PublishedAt, &e.PublishAttempts, &e.LastError, &e.NextAttemptAt,
	); err != nil {
		return nil, err
	}
	e.Payload = payload
	e.Status = entity.OutboxStatus(status)
	return &e, nil
}

func (r *OutboxRepo) list(ctx context.Context, query string, args ...any) ([]*entity.OutboxEvent, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.OutboxEvent, 0)
	for rows.Next() {
		e, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// FetchPending lectura corta sin bloqueo; el publicador es el único consumidor.
func (r *OutboxRepo) FetchPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error) {
	query := `SELECT ` + outboxColumns + `
		FROM event_outbox
		WHERE status = $1 AND published_at IS NULL AND next_attempt_at <= $2
		ORDER BY created_at, id
		LIMIT $3`
	return r.list(ctx, query, string(entity.OutboxPending), now, limit)
}

func (r *OutboxRepo) GetByID(ctx context.Context, id string) (*entity.OutboxEvent, error) {
	if !isUUID(id) {
		return nil, nil
	}
	e, err := scanOutbox(r.q.QueryRow(ctx, `SELECT `+outboxColumns+` FROM event_outbox WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outbox event: %w", err)
	}
	return e, nil
}

// MarkPublished una sola sentencia: published_at se fija como máximo una vez.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE event_outbox
		SET published_at = $2, status = $3, last_error = NULL
		WHERE id = $1 AND published_at IS NULL`,
		id, at, string(entity.OutboxPublished))
	if err != nil {
		return false, fmt.Errorf("mark outbox published: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordFailure incrementa intentos en la BD (no sobre el valor leído) y reprograma o manda a DEAD_LETTER.
func (r *OutboxRepo) RecordFailure(ctx context.Context, id string, f repository.OutboxFailure) error {
	status := entity.OutboxPending
	if f.DeadLetter {
		status = entity.OutboxDeadLetter
	}
	_, err := r.q.Exec(ctx, `
		UPDATE event_outbox
		SET publish_attempts = publish_attempts + 1,
		    last_error = $2,
		    next_attempt_at = $3,
		    status = $4
		WHERE id = $1 AND published_at IS NULL`,
		id, f.Error, f.NextAttemptAt, string(status))
	if err != nil {
		return fmt.Errorf("record outbox failure: %w", err)
	}
	return nil
}

func (r *OutboxRepo) ListDeadLetters(ctx context.Context, limit, offset int) ([]*entity.OutboxEvent, error) {
	query := `SELECT ` + outboxColumns + `
		FROM event_outbox WHERE status = $1
		ORDER BY created_at, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, string(entity.OutboxDeadLetter), limit, offset)
}

// Requeue devuelve false si el id no corresponde a un evento en DEAD_LETTER.
func (r *OutboxRepo) Requeue(ctx context.Context, id string, at time.Time) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE event_outbox
		SET status = $2, publish_attempts = 0, next_attempt_at = $3
		WHERE id = $1 AND status = $4`,
		id, string(entity.OutboxPending), at, string(entity.OutboxDeadLetter))
	if err != nil {
		return false, fmt.Errorf("requeue outbox event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
