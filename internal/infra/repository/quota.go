package repository

import (
	"context"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"
	"bakery-flashsale/internal/usecase/shared"
)

const (
	// Insert or add in one statement; the WHERE clauses make the cap atomic.
	claimQuotaSQL = `
INSERT INTO sale_user_quotas (sale_id, product_id, user_id, claimed)
SELECT $1::uuid, $2::uuid, $3::uuid, $4::int
WHERE $4::int <= $5::int
ON CONFLICT (sale_id, product_id, user_id) DO UPDATE
SET claimed = sale_user_quotas.claimed + EXCLUDED.claimed, updated_at = NOW()
WHERE sale_user_quotas.claimed + EXCLUDED.claimed <= $5::int
RETURNING claimed`

	returnQuotaSQL = `
UPDATE sale_user_quotas
SET claimed = claimed - $4, updated_at = NOW()
WHERE sale_id = $1 AND product_id = $2 AND user_id = $3 AND claimed >= $4`

	selectQuotaSQL = `
SELECT claimed
FROM sale_user_quotas
WHERE sale_id = $1 AND product_id = $2 AND user_id = $3`
)

type QuotaRepository struct {
	db db.DBTX
}

func NewQuotaRepository(db db.DBTX) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) Claim(ctx context.Context, key shared.QuotaKey, q, limit int) (int, error) {
	var claimed int
	err := r.db.QueryRow(ctx, claimQuotaSQL, key.SaleID, key.ProductID, key.UserID, q, limit).Scan(&claimed)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("per-user limit reached", err, infra.KindConflict)
		}
		return 0, infra.WrapRepoErr("failed to claim quota", err)
	}
	return claimed, nil
}

func (r *QuotaRepository) Return(ctx context.Context, key shared.QuotaKey, q int) error {
	tag, err := r.db.Exec(ctx, returnQuotaSQL, key.SaleID, key.ProductID, key.UserID, q)
	if err != nil {
		return infra.WrapRepoErr("failed to return quota", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("quota below released quantity", nil, infra.KindConflict)
	}
	return nil
}

// Claimed is 0 for a user who never reserved the item.
func (r *QuotaRepository) Claimed(ctx context.Context, key shared.QuotaKey) (int, error) {
	var claimed int
	err := r.db.QueryRow(ctx, selectQuotaSQL, key.SaleID, key.ProductID, key.UserID).Scan(&claimed)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read quota", err)
	}
	return claimed, nil
}
