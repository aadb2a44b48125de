package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Options parámetros del publicador.
type Options struct {
	Interval       time.Duration
	BatchSize      int
	MaxAttempts    int // al alcanzarlo el evento pasa a DEAD_LETTER; <= 0 = sin límite
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	PublishTimeout time.Duration
}

// DefaultOptions valores usados cuando la configuración no indica otros.
func DefaultOptions() Options {
	return Options{
		Interval:       10 * time.Second,
		BatchSize:      100,
		MaxAttempts:    10,
		BaseBackoff:    5 * time.Second,
		MaxBackoff:     15 * time.Minute,
		PublishTimeout: 5 * time.Second,
	}
}

// Envelope mensaje enviado al bus.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Topic      string          `json:"topic"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEnvelope arma el envelope de una fila del outbox.
func NewEnvelope(e *entity.OutboxEvent) Envelope {
	return Envelope{
		EventID:    e.ID,
		Topic:      e.Topic,
		EventType:  e.EventType,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Payload:    e.Payload,
		CreatedAt:  e.CreatedAt,
	}
}

// Result resumen de una pasada del publicador.
type Result struct {
	Fetched      int
	Published    int
	Failed       int
	DeadLettered int
}

// Publisher drena el outbox hacia el bus. Entrega al menos una vez: un evento enviado
// cuya marca falla se reenvía en la siguiente pasada. Las llamadas al bus nunca ocurren
// con una transacción de BD abierta.
type Publisher struct {
	store   Store
	bus     MessageBus
	opts    Options
	log     *logger.Logger
	metrics Metrics
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPublisher construye el publicador. metrics puede ser nil.
func NewPublisher(store Store, bus MessageBus, opts Options, log *logger.Logger, metrics Metrics) *Publisher {
	def := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = def.BaseBackoff
	}
	if opts.MaxBackoff < opts.BaseBackoff {
		opts.MaxBackoff = opts.BaseBackoff
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = def.PublishTimeout
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{store: store, bus: bus, opts: opts, log: log, metrics: metrics, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// Start lanza la goroutine del publicador. El dueño debe llamar Stop antes de cerrar el pool.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("outbox publisher ya iniciado")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	p.log.Info().Dur("interval", p.opts.Interval).Int("batch_size", p.opts.BatchSize).Msg("outbox publisher iniciado")
	return nil
}

// Stop cancela la goroutine y espera a que termine la pasada en curso.
func (p *Publisher) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Info().Msg("outbox publisher detenido")
}

func (p *Publisher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()
	for {
		p.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Publisher) tick(ctx context.Context) {
	start := time.Now()
	res, err := p.RunOnce(ctx)
	p.metrics.TickDuration(time.Since(start))
	if err != nil {
		if ctx.Err() == nil {
			p.log.Error().Err(err).Msg("outbox: pasada fallida")
		}
		return
	}
	if res.Fetched > 0 {
		p.log.Info().
			Int("fetched", res.Fetched).
			Int("published", res.Published).
			Int("failed", res.Failed).
			Int("dead_lettered", res.DeadLettered).
			Msg("outbox: pasada completada")
	}
}

// RunOnce procesa un lote de eventos pendientes en orden de creación. El siguiente
// intento de un evento fallido se calcula desde el inicio de la pasada.
func (p *Publisher) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	start := p.now()
	events, err := p.store.FetchPending(ctx, start, p.opts.BatchSize)
	if err != nil {
		return res, fmt.Errorf("fetch pending: %w", err)
	}
	res.Fetched = len(events)
	p.metrics.Fetched(len(events))

	for _, e := range events {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := p.publish(ctx, e); err != nil {
			res.Failed++
			dead, ferr := p.recordFailure(ctx, e, start, err)
			if ferr != nil {
				p.log.Error().Err(ferr).Str("event_id", e.ID).Msg("outbox: no se pudo registrar el fallo")
				continue
			}
			if dead {
				res.DeadLettered++
			}
			continue
		}
		res.Published++
		p.metrics.Published(e.Topic)
		marked, err := p.store.MarkPublished(ctx, e.ID, p.now())
		if err != nil {
			p.log.Error().Err(err).Str("event_id", e.ID).Msg("outbox: evento enviado pero no marcado; se reenviará")
			continue
		}
		if !marked {
			p.log.Debug().Str("event_id", e.ID).Msg("outbox: evento ya estaba publicado")
		}
	}
	return res, nil
}

func (p *Publisher) publish(ctx context.Context, e *entity.OutboxEvent) error {
	value, err := json.Marshal(NewEnvelope(e))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, p.opts.PublishTimeout)
	defer cancel()
	return p.bus.Send(sendCtx, e.Topic, e.PartitionKey, value)
}

func (p *Publisher) recordFailure(ctx context.Context, e *entity.OutboxEvent, start time.Time, sendErr error) (bool, error) {
	attempts := e.PublishAttempts + 1
	dead := p.opts.MaxAttempts > 0 && attempts >= p.opts.MaxAttempts
	failure := repository.OutboxFailure{
		Error:         sendErr.Error(),
		NextAttemptAt: start.Add(Backoff(attempts, p.opts.BaseBackoff, p.opts.MaxBackoff)),
		DeadLetter:    dead,
	}
	if err := p.store.RecordFailure(ctx, e.ID, failure); err != nil {
		return false, err
	}
	p.metrics.Failed(e.Topic)
	if dead {
		p.metrics.DeadLettered(e.Topic)
		p.log.Error().Err(sendErr).Str("event_id", e.ID).Str("entity_id", e.EntityID).
			Int("attempts", attempts).Msg("outbox: evento enviado a dead letter")
	} else {
		p.log.Warn().Err(sendErr).Str("event_id", e.ID).Int("attempts", attempts).
			Time("next_attempt_at", failure.NextAttemptAt).Msg("outbox: publicación fallida")
	}
	return dead, nil
}

// Backoff espera antes del siguiente intento: base·2^(attempts-1), con tope max.
func Backoff(attempts int, base, maxDelay time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxDelay || d <= 0 {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}
