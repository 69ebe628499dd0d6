package readstore

import (
	"context"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	saleViewSQL = `
SELECT id, name, description, starts_at, ends_at, cancelled_at, created_at
FROM flash_sales
WHERE id = $1`

	saleItemsViewSQL = `
SELECT product_id, flash_price, original_price, stock_limit, sold_count, pending_count, remaining, per_user_limit
FROM sale_items
WHERE sale_id = $1
ORDER BY product_id`
)

type SaleReadStore struct {
	db db.DBTX
}

func NewSaleReadStore(db db.DBTX) *SaleReadStore {
	return &SaleReadStore{db: db}
}

// FindByID leaves Status empty; it depends on the caller's clock.
func (s *SaleReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SaleView, error) {
	var (
		v           queries.SaleView
		cancelledAt pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, saleViewSQL, id).
		Scan(&v.ID, &v.Name, &v.Description, &v.StartsAt, &v.EndsAt, &cancelledAt, &v.CreatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("flash sale not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find flash sale", err)
	}
	v.CancelledAt = pgconv.TimePtrFromPgtype(cancelledAt)

	rows, err := s.db.Query(ctx, saleItemsViewSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sale items", err)
	}
	v.Items, err = pgx.CollectRows(rows, scanSaleItemView)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan sale items", err)
	}
	return &v, nil
}

func scanSaleItemView(row pgx.CollectableRow) (queries.SaleItemView, error) {
	var (
		v               queries.SaleItemView
		flash, original pgtype.Numeric
	)
	if err := row.Scan(&v.ProductID, &flash, &original, &v.StockLimit, &v.SoldCount, &v.PendingCount, &v.Remaining, &v.PerUserLimit); err != nil {
		return v, err
	}
	var err error
	if v.FlashPrice, err = pgconv.DecimalFromNumeric(flash); err != nil {
		return v, err
	}
	if v.OriginalPrice, err = pgconv.DecimalFromNumeric(original); err != nil {
		return v, err
	}
	return v, nil
}
