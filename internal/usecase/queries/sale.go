package queries

//go:generate mockgen -source=sale.go -destination=../../testutil/mock/queries/sale.go -package=queriesmock

import (
	"context"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/errs"

	"github.com/google/uuid"
)

type SaleQueries interface {
	GetSale(ctx context.Context, id uuid.UUID) (*SaleView, error)
}

type saleQueriesImpl struct {
	store SaleReadStore
	clock clock.Clock
}

func NewSaleQueries(store SaleReadStore, clk clock.Clock) SaleQueries {
	return &saleQueriesImpl{store: store, clock: clk}
}

func (q *saleQueriesImpl) GetSale(ctx context.Context, id uuid.UUID) (*SaleView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, errs.ErrSaleNotFound)
	}
	view.Status = statusAt(view, q.clock.Now()).String()
	for i, it := range view.Items {
		if pricing, err := flashsale.NewPricing(it.FlashPrice, it.OriginalPrice); err == nil {
			view.Items[i].DiscountPercent = pricing.DiscountPercent()
		}
	}
	return view, nil
}

func statusAt(v *SaleView, now time.Time) flashsale.Status {
	window := flashsale.ReconstructFlashSale(v.ID, flashsale.Name{}, "", v.StartsAt, v.EndsAt, v.CancelledAt, nil, v.CreatedAt)
	return window.StatusAt(now)
}
