package readstore

import (
	"context"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	stockItemSQL = `
SELECT sale_id, product_id, stock_limit, remaining, pending_count, sold_count, per_user_limit
FROM sale_items
WHERE sale_id = $1 AND product_id = $2`

	stockBySaleSQL = `
SELECT sale_id, product_id, stock_limit, remaining, pending_count, sold_count, per_user_limit
FROM sale_items
WHERE sale_id = $1
ORDER BY product_id`
)

type StockReadStore struct {
	db db.DBTX
}

func NewStockReadStore(db db.DBTX) *StockReadStore {
	return &StockReadStore{db: db}
}

func (s *StockReadStore) FindItem(ctx context.Context, saleID, productID uuid.UUID) (*queries.StockView, error) {
	rows, err := s.db.Query(ctx, stockItemSQL, saleID, productID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read stock", err)
	}
	view, err := pgx.CollectExactlyOneRow(rows, scanStockView)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sale item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan stock", err)
	}
	return &view, nil
}

func (s *StockReadStore) ListBySale(ctx context.Context, saleID uuid.UUID) ([]queries.StockView, error) {
	rows, err := s.db.Query(ctx, stockBySaleSQL, saleID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list stock", err)
	}
	views, err := pgx.CollectRows(rows, scanStockView)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan stock", err)
	}
	return views, nil
}

func scanStockView(row pgx.CollectableRow) (queries.StockView, error) {
	var v queries.StockView
	err := row.Scan(&v.SaleID, &v.ProductID, &v.StockLimit, &v.Remaining, &v.PendingCount, &v.SoldCount, &v.PerUserLimit)
	return v, err
}
