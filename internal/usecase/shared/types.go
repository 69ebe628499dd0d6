package shared

import (
	"time"

	"github.com/google/uuid"
)

type QuotaKey struct {
	SaleID    uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
}

type OutboxMessage struct {
	Topic    string
	EventKey string
	Payload  []byte
}

type OutboxEvent struct {
	ID        int64
	Topic     string
	EventKey  string
	Payload   []byte
	CreatedAt time.Time
	Attempts  int
}
