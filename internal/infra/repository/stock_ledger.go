package repository

import (
	"context"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// Each counter move is one conditional UPDATE. The row lock it takes is held
// until the surrounding transaction ends, and the table CHECKs reject drift.
const (
	tryDecrementSQL = `
UPDATE sale_items
SET remaining = remaining - $3, pending_count = pending_count + $3, updated_at = NOW()
WHERE sale_id = $1 AND product_id = $2 AND remaining >= $3
RETURNING per_user_limit`

	foldIntoSoldSQL = `
UPDATE sale_items
SET pending_count = pending_count - $3, sold_count = sold_count + $3, updated_at = NOW()
WHERE sale_id = $1 AND product_id = $2 AND pending_count >= $3`

	returnStockSQL = `
UPDATE sale_items
SET pending_count = pending_count - $3, remaining = remaining + $3, updated_at = NOW()
WHERE sale_id = $1 AND product_id = $2 AND pending_count >= $3`

	saleItemExistsSQL = `
SELECT EXISTS (SELECT 1 FROM sale_items WHERE sale_id = $1 AND product_id = $2)`
)

type StockLedger struct {
	db db.DBTX
}

func NewStockLedger(db db.DBTX) *StockLedger {
	return &StockLedger{db: db}
}

func (l *StockLedger) TryDecrement(ctx context.Context, saleID, productID uuid.UUID, q int) (int, error) {
	var perUserLimit int
	err := l.db.QueryRow(ctx, tryDecrementSQL, saleID, productID, q).Scan(&perUserLimit)
	if err == nil {
		return perUserLimit, nil
	}
	if !pgconv.IsNoRows(err) {
		return 0, infra.WrapRepoErr("failed to decrement stock", err)
	}

	var exists bool
	if err := l.db.QueryRow(ctx, saleItemExistsSQL, saleID, productID).Scan(&exists); err != nil {
		return 0, infra.WrapRepoErr("failed to check sale item", err)
	}
	if !exists {
		return 0, infra.WrapRepoErr("sale item not found", nil, infra.KindNotFound)
	}
	return 0, infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
}

func (l *StockLedger) FoldIntoSold(ctx context.Context, saleID, productID uuid.UUID, q int) error {
	tag, err := l.db.Exec(ctx, foldIntoSoldSQL, saleID, productID, q)
	if err != nil {
		return infra.WrapRepoErr("failed to fold pending into sold", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pending count below committed quantity", nil, infra.KindConflict)
	}
	return nil
}

func (l *StockLedger) Return(ctx context.Context, saleID, productID uuid.UUID, q int) error {
	tag, err := l.db.Exec(ctx, returnStockSQL, saleID, productID, q)
	if err != nil {
		return infra.WrapRepoErr("failed to return stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("pending count below released quantity", nil, infra.KindConflict)
	}
	return nil
}
