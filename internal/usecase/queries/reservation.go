package queries

//go:generate mockgen -source=reservation.go -destination=../../testutil/mock/queries/reservation.go -package=queriesmock

import (
	"context"

	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/errs"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetReservation(ctx context.Context, id uuid.UUID, actor user.Actor) (*ReservationView, error)
	ListOutstanding(ctx context.Context, saleID, productID uuid.UUID, actor user.Actor) ([]ReservationView, error)
}

type reservationQueriesImpl struct {
	store ReservationReadStore
	clock clock.Clock
}

func NewReservationQueries(store ReservationReadStore, clk clock.Clock) ReservationQueries {
	return &reservationQueriesImpl{store: store, clock: clk}
}

// GetReservation shows a hold to its owner only. The checkout service may read any hold.
func (q *reservationQueriesImpl) GetReservation(ctx context.Context, id uuid.UUID, actor user.Actor) (*ReservationView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errs.ErrReservationNotFound)
	}
	if actor.Role != user.RoleService && !actor.Owns(view.UserID) {
		return nil, errs.ErrNotOwner
	}
	return view, nil
}

// ListOutstanding returns the caller's own pending holds on one item, oldest first.
// Holds past their deadline are left out even if the sweeper has not released them yet.
func (q *reservationQueriesImpl) ListOutstanding(ctx context.Context, saleID, productID uuid.UUID, actor user.Actor) ([]ReservationView, error) {
	views, err := q.store.ListOutstanding(ctx, saleID, productID, actor.UserID, q.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return views, nil
}
