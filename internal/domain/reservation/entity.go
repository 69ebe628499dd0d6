package reservation

import (
	"time"

	"github.com/google/uuid"
)

type Reservation struct {
	id             uuid.UUID
	saleID         uuid.UUID
	productID      uuid.UUID
	userID         uuid.UUID
	quantity       int
	status         Status
	expiresAt      time.Time
	releaseReason  *ReleaseReason
	idempotencyKey *uuid.UUID
	createdAt      time.Time
	updatedAt      time.Time
	closedAt       *time.Time
}

type Hold struct {
	SaleID         uuid.UUID
	ProductID      uuid.UUID
	UserID         uuid.UUID
	Quantity       int
	IdempotencyKey *uuid.UUID
}

// NewReservation opens a pending hold that expires holdWindow after now.
func NewReservation(now time.Time, holdWindow time.Duration, h Hold) (*Reservation, error) {
	if h.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if holdWindow <= 0 {
		return nil, ErrInvalidHoldWindow
	}
	return &Reservation{
		id:             uuid.New(),
		saleID:         h.SaleID,
		productID:      h.ProductID,
		userID:         h.UserID,
		quantity:       h.Quantity,
		status:         StatusPending,
		expiresAt:      now.Add(holdWindow),
		idempotencyKey: h.IdempotencyKey,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructReservation(
	id, saleID, productID, userID uuid.UUID,
	quantity int,
	status Status,
	expiresAt time.Time,
	releaseReason *ReleaseReason,
	idempotencyKey *uuid.UUID,
	createdAt, updatedAt time.Time,
	closedAt *time.Time,
) *Reservation {
	return &Reservation{
		id:             id,
		saleID:         saleID,
		productID:      productID,
		userID:         userID,
		quantity:       quantity,
		status:         status,
		expiresAt:      expiresAt,
		releaseReason:  releaseReason,
		idempotencyKey: idempotencyKey,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		closedAt:       closedAt,
	}
}

// IsDueAt reports a pending hold whose window has elapsed. Such a hold can no
// longer be completed even if no sweeper has touched it yet.
func (r *Reservation) IsDueAt(now time.Time) bool {
	return r.status == StatusPending && !r.expiresAt.After(now)
}

// Complete is the single pending -> completed transition.
func (r *Reservation) Complete(now time.Time) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if r.IsDueAt(now) {
		return ErrHoldExpired
	}
	r.status = StatusCompleted
	r.updatedAt = now
	r.closedAt = &now
	return nil
}

// Release is the single pending -> expired transition.
func (r *Reservation) Release(now time.Time, reason ReleaseReason) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if _, err := ParseReleaseReason(reason.String()); err != nil {
		return err
	}
	r.status = StatusExpired
	r.releaseReason = &reason
	r.updatedAt = now
	r.closedAt = &now
	return nil
}

// SameRequest reports whether a replayed request carries the same parameters.
func (r *Reservation) SameRequest(h Hold) bool {
	return r.saleID == h.SaleID && r.productID == h.ProductID && r.quantity == h.Quantity
}

func (r *Reservation) ID() uuid.UUID                 { return r.id }
func (r *Reservation) SaleID() uuid.UUID             { return r.saleID }
func (r *Reservation) ProductID() uuid.UUID          { return r.productID }
func (r *Reservation) UserID() uuid.UUID             { return r.userID }
func (r *Reservation) Quantity() int                 { return r.quantity }
func (r *Reservation) Status() Status                { return r.status }
func (r *Reservation) ExpiresAt() time.Time          { return r.expiresAt }
func (r *Reservation) ReleaseReason() *ReleaseReason { return r.releaseReason }
func (r *Reservation) IdempotencyKey() *uuid.UUID    { return r.idempotencyKey }
func (r *Reservation) CreatedAt() time.Time          { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time          { return r.updatedAt }
func (r *Reservation) ClosedAt() *time.Time          { return r.closedAt }
