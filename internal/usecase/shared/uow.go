package shared

import (
	"context"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/domain/reservation"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Sales() SaleRepository
	Stock() StockLedger
	Reservations() ReservationRepository
	Quotas() QuotaRepository
	Outbox() OutboxRepository
}

// CommandReads are pre-transaction lookups. Their results are hints; every
// decision that matters is re-checked by a conditional write inside Within.
type CommandReads interface {
	SaleByID(ctx context.Context, id uuid.UUID) (*flashsale.FlashSale, error)
	ReservationByIdempotencyKey(ctx context.Context, userID, key uuid.UUID) (*reservation.Reservation, error)
	QuotaClaimed(ctx context.Context, key QuotaKey) (int, error)
	// DueReservationIDs skips the ids in exclude so rows that keep failing do not block the queue.
	DueReservationIDs(ctx context.Context, now time.Time, exclude []uuid.UUID, limit int) ([]uuid.UUID, error)
	DueReservationIDsForItem(ctx context.Context, saleID, productID uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error)
}

type SaleRepository interface {
	Create(ctx context.Context, sale *flashsale.FlashSale) error
	FindByID(ctx context.Context, id uuid.UUID) (*flashsale.FlashSale, error)
	// Cancel sets cancelled_at only while the sale is neither cancelled nor over.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
}

// StockLedger mutates sale_items counters with single conditional statements.
type StockLedger interface {
	// TryDecrement moves q units from remaining to pending and returns the item's per-user limit.
	TryDecrement(ctx context.Context, saleID, productID uuid.UUID, q int) (int, error)
	FoldIntoSold(ctx context.Context, saleID, productID uuid.UUID, q int) error
	Return(ctx context.Context, saleID, productID uuid.UUID, q int) error
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// UpdateStatus persists a terminal transition only if the row is still pending.
	UpdateStatus(ctx context.Context, res *reservation.Reservation) error
	PurgeTerminal(ctx context.Context, before time.Time) (int64, error)
}

type QuotaRepository interface {
	// Claim adds q to the user's claimed units unless that would exceed limit.
	Claim(ctx context.Context, key QuotaKey, q, limit int) (int, error)
	Return(ctx context.Context, key QuotaKey, q int) error
}

type OutboxRepository interface {
	Append(ctx context.Context, msg OutboxMessage) error
	// LockUnpublished selects pending events FOR UPDATE SKIP LOCKED.
	LockUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	PurgePublished(ctx context.Context, before time.Time) (int64, error)
}
