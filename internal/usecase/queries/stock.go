package queries

//go:generate mockgen -source=stock.go -destination=../../testutil/mock/queries/stock.go -package=queriesmock

import (
	"context"
	"log/slog"

	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/errs"

	"github.com/google/uuid"
)

type StockQueries interface {
	// GetAvailableStock reads the ledger after releasing due holds. Never cached.
	GetAvailableStock(ctx context.Context, saleID, productID uuid.UUID) (*StockView, error)
	// GetSaleStock lists every item of a sale and may be a few seconds stale.
	GetSaleStock(ctx context.Context, saleID uuid.UUID) (*SaleStockView, error)
}

type stockQueriesImpl struct {
	stocks  StockReadStore
	sales   SaleReadStore
	sweeper ItemSweeper
	cache   StockSnapshotCache
	clock   clock.Clock
	logger  *slog.Logger
}

func NewStockQueries(
	stocks StockReadStore,
	sales SaleReadStore,
	sweeper ItemSweeper,
	cache StockSnapshotCache,
	clk clock.Clock,
	logger *slog.Logger,
) StockQueries {
	return &stockQueriesImpl{
		stocks:  stocks,
		sales:   sales,
		sweeper: sweeper,
		cache:   cache,
		clock:   clk,
		logger:  logger,
	}
}

func (q *stockQueriesImpl) GetAvailableStock(ctx context.Context, saleID, productID uuid.UUID) (*StockView, error) {
	if _, err := q.sweeper.SweepItem(ctx, saleID, productID); err != nil {
		q.logger.WarnContext(ctx, "lazy expiry failed before stock read",
			slog.String("sale_id", saleID.String()),
			slog.String("product_id", productID.String()),
			slog.String("error", err.Error()))
	}

	view, err := q.stocks.FindItem(ctx, saleID, productID)
	if err != nil {
		return nil, lookupErr(err, errs.ErrSaleItemNotFound)
	}
	return view, nil
}

func (q *stockQueriesImpl) GetSaleStock(ctx context.Context, saleID uuid.UUID) (*SaleStockView, error) {
	cached, ok, err := q.cache.Get(ctx, saleID)
	if err != nil {
		q.logger.WarnContext(ctx, "stock cache read failed",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
	}
	if ok {
		return cached, nil
	}

	sale, err := q.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, lookupErr(err, errs.ErrSaleNotFound)
	}
	items, err := q.stocks.ListBySale(ctx, saleID)
	if err != nil {
		return nil, lookupErr(err, errs.ErrSaleNotFound)
	}

	now := q.clock.Now()
	view := &SaleStockView{
		SaleID:      saleID,
		Status:      statusAt(sale, now).String(),
		Items:       items,
		GeneratedAt: now,
	}
	if err := q.cache.Set(ctx, view); err != nil {
		q.logger.WarnContext(ctx, "stock cache write failed",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
	}
	return view, nil
}
