package readstore

import (
	"context"
	"time"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationViewColumns = `id, sale_id, product_id, user_id, quantity, status, expires_at, release_reason, created_at, updated_at, closed_at`

const (
	reservationViewSQL = `
SELECT ` + reservationViewColumns + `
FROM stock_reservations
WHERE id = $1`

	// Served by stock_reservations_owner_idx; due holds are already logically expired.
	outstandingViewSQL = `
SELECT ` + reservationViewColumns + `
FROM stock_reservations
WHERE sale_id = $1 AND product_id = $2 AND user_id = $3 AND status = 'pending' AND expires_at > $4
ORDER BY created_at`
)

type ReservationReadStore struct {
	db db.DBTX
}

func NewReservationReadStore(db db.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: db}
}

func (r *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	v, err := scanReservationView(r.db.QueryRow(ctx, reservationViewSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by ID", err)
	}
	return v, nil
}

func (r *ReservationReadStore) ListOutstanding(ctx context.Context, saleID, productID, userID uuid.UUID, now time.Time) ([]queries.ReservationView, error) {
	rows, err := r.db.Query(ctx, outstandingViewSQL, saleID, productID, userID, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list outstanding reservations", err)
	}
	defer rows.Close()

	views := []queries.ReservationView{}
	for rows.Next() {
		v, err := scanReservationView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}
	return views, nil
}

func scanReservationView(row pgx.Row) (*queries.ReservationView, error) {
	var (
		v        queries.ReservationView
		reason   pgtype.Text
		closedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&v.ID, &v.SaleID, &v.ProductID, &v.UserID, &v.Quantity, &v.Status, &v.ExpiresAt,
		&reason, &v.CreatedAt, &v.UpdatedAt, &closedAt); err != nil {
		return nil, err
	}
	v.ReleaseReason = pgconv.StringPtrFromPgtype(reason)
	v.ClosedAt = pgconv.TimePtrFromPgtype(closedAt)
	return &v, nil
}
