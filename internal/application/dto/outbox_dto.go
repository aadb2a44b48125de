package dto

import (
	"encoding/json"
	"time"
)

// OutboxEventResponse evento del outbox para el operador (dead letters).
type OutboxEventResponse struct {
	ID              string          `json:"id"`
	Topic           string          `json:"topic"`
	EventType       string          `json:"event_type"`
	EntityType      string          `json:"entity_type"`
	EntityID        string          `json:"entity_id"`
	PartitionKey    string          `json:"partition_key"`
	Status          string          `json:"status"`
	Payload         json.RawMessage `json:"payload"`
	CreatedAt       time.Time       `json:"created_at"`
	PublishAttempts int             `json:"publish_attempts"`
	LastError       *string         `json:"last_error,omitempty"`
	NextAttemptAt   time.Time       `json:"next_attempt_at"`
}
