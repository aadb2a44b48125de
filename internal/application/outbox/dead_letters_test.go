package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// deadLetterRepo OutboxRepository en memoria para el caso de uso del operador.
type deadLetterRepo struct {
	*memStore
}

func (r deadLetterRepo) Create(_ context.Context, e *entity.OutboxEvent) error {
	r.events[e.ID] = e
	return nil
}

func (r deadLetterRepo) GetByID(_ context.Context, id string) (*entity.OutboxEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r deadLetterRepo) ListDeadLetters(_ context.Context, limit, offset int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, e := range r.events {
		if e.Status == entity.OutboxDeadLetter {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r deadLetterRepo) Requeue(_ context.Context, id string, at time.Time) (bool, error) {
	e, ok := r.events[id]
	if !ok || e.Status != entity.OutboxDeadLetter {
		return false, nil
	}
	e.Status = entity.OutboxPending
	e.NextAttemptAt = at
	e.PublishAttempts = 0
	return true, nil
}

var _ repository.OutboxRepository = deadLetterRepo{}

func newDeadLetterFixture() (*DeadLetterUseCase, deadLetterRepo) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	dead := pendingEvent("dead", base)
	dead.Status = entity.OutboxDeadLetter
	dead.PublishAttempts = 10
	repo := deadLetterRepo{newMemStore(dead, pendingEvent("pending", base))}
	uc := NewDeadLetterUseCase(repo)
	uc.now = func() time.Time { return base.Add(time.Hour) }
	return uc, repo
}

func TestDeadLetters_List(t *testing.T) {
	uc, _ := newDeadLetterFixture()
	list, err := uc.List(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "dead", list[0].ID)
	assert.Equal(t, "DEAD_LETTER", list[0].Status)
}

func TestDeadLetters_Retry(t *testing.T) {
	uc, repo := newDeadLetterFixture()
	require.NoError(t, uc.Retry(context.Background(), "dead"))

	e := repo.get("dead")
	assert.Equal(t, entity.OutboxPending, e.Status)
	assert.Equal(t, 0, e.PublishAttempts)
}

func TestDeadLetters_RetryErrors(t *testing.T) {
	uc, _ := newDeadLetterFixture()

	err := uc.Retry(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = uc.Retry(context.Background(), "pending")
	assert.True(t, errors.Is(err, domain.ErrConflict), "solo se reencolan eventos en DEAD_LETTER")
}
