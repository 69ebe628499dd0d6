package commands

import (
	"time"

	"bakery-flashsale/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationSummary struct {
	ID            uuid.UUID
	SaleID        uuid.UUID
	ProductID     uuid.UUID
	UserID        uuid.UUID
	Quantity      int
	Status        reservation.Status
	ExpiresAt     time.Time
	ReleaseReason *reservation.ReleaseReason
	ClosedAt      *time.Time
}

func summarize(res *reservation.Reservation) ReservationSummary {
	return ReservationSummary{
		ID:            res.ID(),
		SaleID:        res.SaleID(),
		ProductID:     res.ProductID(),
		UserID:        res.UserID(),
		Quantity:      res.Quantity(),
		Status:        res.Status(),
		ExpiresAt:     res.ExpiresAt(),
		ReleaseReason: res.ReleaseReason(),
		ClosedAt:      res.ClosedAt(),
	}
}
