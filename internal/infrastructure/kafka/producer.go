package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-ledger/internal/application/outbox"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

var _ outbox.MessageBus = (*Producer)(nil)

// messageWriter subconjunto de *kafka.Writer usado por el productor.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer implementa outbox.MessageBus sobre segmentio/kafka-go.
// El balanceo por hash de la clave mantiene el orden de eventos por producto.
type Producer struct {
	w messageWriter
}

// NewProducer construye el writer. El tópico va en cada mensaje, no en el writer.
func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: KAFKA_BROKERS vacío")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
	}
	return &Producer{w: w}, nil
}

// Send escribe un mensaje y espera el ack del broker (o el vencimiento de ctx).
func (p *Producer) Send(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: time.Now().UTC(),
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", topic, err)
	}
	return nil
}

// Close libera las conexiones del writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
