package reservation

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventCompleted EventType = "reservation.completed"
	EventExpired   EventType = "reservation.expired"
)

// Event is the payload appended to the outbox with every ledger mutation.
type Event struct {
	Type          EventType  `json:"type"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	SaleID        uuid.UUID  `json:"sale_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	UserID        uuid.UUID  `json:"user_id"`
	Quantity      int        `json:"quantity"`
	Status        Status     `json:"status"`
	Reason        *string    `json:"reason,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	OccurredAt    time.Time  `json:"occurred_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

func NewEvent(t EventType, r *Reservation, at time.Time) Event {
	var reason *string
	if r.releaseReason != nil {
		s := r.releaseReason.String()
		reason = &s
	}
	return Event{
		Type:          t,
		ReservationID: r.id,
		SaleID:        r.saleID,
		ProductID:     r.productID,
		UserID:        r.userID,
		Quantity:      r.quantity,
		Status:        r.status,
		Reason:        reason,
		ExpiresAt:     r.expiresAt,
		OccurredAt:    at,
		ClosedAt:      r.closedAt,
	}
}
