package commands

import (
	"context"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
)

// Reservation outcomes reported to the Recorder.
const (
	OutcomeReserved          = "reserved"
	OutcomeReplayed          = "replayed"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeLimitExceeded     = "limit_exceeded"
	OutcomeSaleNotActive     = "sale_not_active"
	OutcomeRejected          = "rejected"
	OutcomeError             = "error"
)

type Recorder interface {
	ReservationOutcome(outcome string)
	HoldReleased(reason reservation.ReleaseReason)
	HoldCompleted()
	SweepCompleted(d time.Duration, released int)
	OutboxPublished(ok bool)
}

// StockCache drops the cached stock listing of a sale after its counters change.
type StockCache interface {
	Invalidate(ctx context.Context, saleID uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, evt shared.OutboxEvent) error
}

type NopRecorder struct{}

func (NopRecorder) ReservationOutcome(string)              {}
func (NopRecorder) HoldReleased(reservation.ReleaseReason) {}
func (NopRecorder) HoldCompleted()                         {}
func (NopRecorder) SweepCompleted(time.Duration, int)      {}
func (NopRecorder) OutboxPublished(bool)                   {}

type NopStockCache struct{}

func (NopStockCache) Invalidate(context.Context, uuid.UUID) error { return nil }
