package queries

//go:generate mockgen -source=ports.go -destination=../../testutil/mock/queries/ports.go -package=queriesmock

import (
	"context"
	"time"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/pkg/errs"

	"github.com/google/uuid"
)

type StockReadStore interface {
	FindItem(ctx context.Context, saleID, productID uuid.UUID) (*StockView, error)
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]StockView, error)
}

type SaleReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleView, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ListOutstanding(ctx context.Context, saleID, productID, userID uuid.UUID, now time.Time) ([]ReservationView, error)
}

// StockSnapshotCache holds short-lived copies of a sale's stock listing.
type StockSnapshotCache interface {
	Get(ctx context.Context, saleID uuid.UUID) (*SaleStockView, bool, error)
	Set(ctx context.Context, view *SaleStockView) error
}

// ItemSweeper releases due holds on one item before its counters are read.
type ItemSweeper interface {
	SweepItem(ctx context.Context, saleID, productID uuid.UUID) (int, error)
}

func lookupErr(err error, notFound error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return notFound
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
