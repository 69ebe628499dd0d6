package repository

import (
	"context"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	insertSaleSQL = `
INSERT INTO flash_sales (id, name, description, starts_at, ends_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	insertSaleItemSQL = `
INSERT INTO sale_items (sale_id, product_id, flash_price, original_price, stock_limit, sold_count, pending_count, remaining, per_user_limit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectSaleSQL = `
SELECT id, name, description, starts_at, ends_at, cancelled_at, created_at
FROM flash_sales
WHERE id = $1`

	selectSaleItemsSQL = `
SELECT sale_id, product_id, flash_price, original_price, stock_limit, sold_count, pending_count, remaining, per_user_limit
FROM sale_items
WHERE sale_id = $1
ORDER BY product_id`

	cancelSaleSQL = `
UPDATE flash_sales
SET cancelled_at = $2
WHERE id = $1 AND cancelled_at IS NULL AND ends_at > $2`
)

type SaleRepository struct {
	db db.DBTX
}

func NewSaleRepository(db db.DBTX) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, sale *flashsale.FlashSale) error {
	_, err := r.db.Exec(ctx, insertSaleSQL,
		sale.ID(), sale.Name().String(), sale.Description(), sale.StartsAt(), sale.EndsAt(), sale.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create flash sale", err)
	}

	for _, it := range sale.Items() {
		_, err := r.db.Exec(ctx, insertSaleItemSQL,
			it.SaleID(), it.ProductID(),
			pgconv.DecimalToNumeric(it.Pricing().Flash()), pgconv.DecimalToNumeric(it.Pricing().Original()),
			it.StockLimit(), it.SoldCount(), it.PendingCount(), it.Remaining(), it.PerUserLimit())
		if err != nil {
			return infra.WrapRepoErr("failed to create sale item", err)
		}
	}
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*flashsale.FlashSale, error) {
	var (
		saleID      uuid.UUID
		name        string
		description string
		startsAt    time.Time
		endsAt      time.Time
		cancelledAt pgtype.Timestamptz
		createdAt   time.Time
	)
	err := r.db.QueryRow(ctx, selectSaleSQL, id).
		Scan(&saleID, &name, &description, &startsAt, &endsAt, &cancelledAt, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("flash sale not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find flash sale", err)
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}

	// stored names were validated on create
	saleName, err := flashsale.NewName(name)
	if err != nil {
		return nil, infra.WrapRepoErr("stored sale name is invalid", err, infra.KindDBFailure)
	}

	return flashsale.ReconstructFlashSale(saleID, saleName, description, startsAt, endsAt,
		pgconv.TimePtrFromPgtype(cancelledAt), items, createdAt), nil
}

func (r *SaleRepository) items(ctx context.Context, saleID uuid.UUID) ([]*flashsale.Item, error) {
	rows, err := r.db.Query(ctx, selectSaleItemsSQL, saleID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sale items", err)
	}
	defer rows.Close()

	var items []*flashsale.Item
	for rows.Next() {
		var (
			sID, pID                                    uuid.UUID
			flash, original                             pgtype.Numeric
			stockLimit, sold, pending, remaining, limit int
		)
		if err := rows.Scan(&sID, &pID, &flash, &original, &stockLimit, &sold, &pending, &remaining, &limit); err != nil {
			return nil, infra.WrapRepoErr("failed to scan sale item", err)
		}
		pricing, err := pricingFromNumeric(flash, original)
		if err != nil {
			return nil, err
		}
		items = append(items, flashsale.ReconstructItem(sID, pID, pricing, stockLimit, sold, pending, remaining, limit))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate sale items", err)
	}
	return items, nil
}

func (r *SaleRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, cancelSaleSQL, id, at)
	if err != nil {
		return infra.WrapRepoErr("failed to cancel flash sale", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("flash sale already closed", nil, infra.KindConflict)
	}
	return nil
}

func pricingFromNumeric(flash, original pgtype.Numeric) (flashsale.Pricing, error) {
	f, err := pgconv.DecimalFromNumeric(flash)
	if err != nil {
		return flashsale.Pricing{}, infra.WrapRepoErr("invalid flash price", err, infra.KindDBFailure)
	}
	o, err := pgconv.DecimalFromNumeric(original)
	if err != nil {
		return flashsale.Pricing{}, infra.WrapRepoErr("invalid original price", err, infra.KindDBFailure)
	}
	p, err := flashsale.NewPricing(f, o)
	if err != nil {
		return flashsale.Pricing{}, infra.WrapRepoErr("stored pricing is invalid", err, infra.KindDBFailure)
	}
	return p, nil
}
