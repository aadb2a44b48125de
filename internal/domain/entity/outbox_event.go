package entity

import (
	"encoding/json"
	"time"
)

// OutboxStatus estado de entrega de un evento del outbox.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxPublished  OutboxStatus = "PUBLISHED"
	OutboxDeadLetter OutboxStatus = "DEAD_LETTER"
)

// Valores fijos para eventos de movimientos de stock.
const (
	EventTypeCreated        = "CREATED"
	EntityTypeStockMovement = "stock_movement"
)

// OutboxEvent fila del outbox transaccional. Se crea en la misma transacción que el
// movimiento y solo el publicador la modifica. PublishedAt se fija una única vez.
type OutboxEvent struct {
	ID              string
	Topic           string
	EventType       string
	EntityType      string
	EntityID        string
	PartitionKey    string
	Payload         json.RawMessage
	Status          OutboxStatus
	CreatedAt       time.Time
	PublishedAt     *time.Time
	PublishAttempts int
	LastError       *string
	NextAttemptAt   time.Time
}
