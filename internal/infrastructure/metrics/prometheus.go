package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/inventario-ledger/internal/application/outbox"
)

var _ outbox.Metrics = (*OutboxMetrics)(nil)

// OutboxMetrics métricas Prometheus del publicador del outbox.
type OutboxMetrics struct {
	published    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	deadLettered *prometheus.CounterVec
	fetched      prometheus.Gauge
	tick         prometheus.Histogram
}

// NewOutboxMetrics crea y registra los colectores en reg.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	m := &OutboxMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Eventos del outbox entregados al bus",
		}, []string{"topic"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_publish_failures_total",
			Help: "Intentos de publicación fallidos",
		}, []string{"topic"}),
		deadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_dead_lettered_total",
			Help: "Eventos movidos a DEAD_LETTER tras agotar intentos",
		}, []string{"topic"}),
		fetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_last_batch_size",
			Help: "Eventos pendientes leídos en la última pasada",
		}),
		tick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_tick_duration_seconds",
			Help:    "Duración de cada pasada del publicador",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.published, m.failed, m.deadLettered, m.fetched, m.tick)
	return m
}

// NewRegistry registry propio con colectores de runtime de Go y del proceso.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func (m *OutboxMetrics) Published(topic string)    { m.published.WithLabelValues(topic).Inc() }
func (m *OutboxMetrics) Failed(topic string)       { m.failed.WithLabelValues(topic).Inc() }
func (m *OutboxMetrics) DeadLettered(topic string) { m.deadLettered.WithLabelValues(topic).Inc() }
func (m *OutboxMetrics) Fetched(n int)             { m.fetched.Set(float64(n)) }
func (m *OutboxMetrics) TickDuration(d time.Duration) {
	m.tick.Observe(d.Seconds())
}
