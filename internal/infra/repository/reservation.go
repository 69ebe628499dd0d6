package repository

import (
	"context"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reservationColumns = `id, sale_id, product_id, user_id, quantity, status, expires_at, release_reason, idempotency_key, created_at, updated_at, closed_at`

const (
	insertReservationSQL = `
INSERT INTO stock_reservations (` + reservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	selectReservationForUpdateSQL = `
SELECT ` + reservationColumns + `
FROM stock_reservations
WHERE id = $1
FOR UPDATE`

	selectReservationByKeySQL = `
SELECT ` + reservationColumns + `
FROM stock_reservations
WHERE user_id = $1 AND idempotency_key = $2`

	updateReservationStatusSQL = `
UPDATE stock_reservations
SET status = $2, release_reason = $3, updated_at = $4, closed_at = $5
WHERE id = $1 AND status = 'pending'`

	selectDueSQL = `
SELECT id
FROM stock_reservations
WHERE status = 'pending' AND expires_at <= $1
  AND id <> ALL(COALESCE($2::uuid[], '{}'))
ORDER BY expires_at, id
LIMIT $3`

	selectDueForItemSQL = `
SELECT id
FROM stock_reservations
WHERE sale_id = $1 AND product_id = $2 AND status = 'pending' AND expires_at <= $3
ORDER BY expires_at
LIMIT $4`

	purgeTerminalSQL = `
DELETE FROM stock_reservations
WHERE status IN ('completed', 'expired') AND COALESCE(closed_at, expires_at) < $1`
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(db db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.db.Exec(ctx, insertReservationSQL,
		res.ID(), res.SaleID(), res.ProductID(), res.UserID(), res.Quantity(),
		res.Status().String(), res.ExpiresAt(), reasonToPgtype(res.ReleaseReason()),
		pgconv.UUIDPtrToPgtype(res.IdempotencyKey()), res.CreatedAt(), res.UpdatedAt(),
		pgconv.TimePtrToPgtype(res.ClosedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, selectReservationForUpdateSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindByIdempotencyKey(ctx context.Context, userID, key uuid.UUID) (*reservation.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, selectReservationByKeySQL, userID, key))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("no reservation for idempotency key", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation by idempotency key", err)
	}
	return res, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, res *reservation.Reservation) error {
	tag, err := r.db.Exec(ctx, updateReservationStatusSQL,
		res.ID(), res.Status().String(), reasonToPgtype(res.ReleaseReason()),
		res.UpdatedAt(), pgconv.TimePtrToPgtype(res.ClosedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation no longer pending", nil, infra.KindConflict)
	}
	return nil
}

func (r *ReservationRepository) DueIDs(ctx context.Context, now time.Time, exclude []uuid.UUID, limit int) ([]uuid.UUID, error) {
	return r.ids(ctx, selectDueSQL, now, exclude, limit)
}

func (r *ReservationRepository) DueIDsForItem(ctx context.Context, saleID, productID uuid.UUID, now time.Time, limit int) ([]uuid.UUID, error) {
	return r.ids(ctx, selectDueForItemSQL, saleID, productID, now, limit)
}

func (r *ReservationRepository) PurgeTerminal(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, purgeTerminalSQL, before)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge reservations", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReservationRepository) ids(ctx context.Context, sql string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list due reservations", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan due reservations", err)
	}
	return ids, nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id, saleID, productID, userID uuid.UUID
		quantity                      int
		status                        string
		expiresAt                     time.Time
		reason                        pgtype.Text
		idemKey                       pgtype.UUID
		createdAt, updatedAt          time.Time
		closedAt                      pgtype.Timestamptz
	)
	if err := row.Scan(&id, &saleID, &productID, &userID, &quantity, &status, &expiresAt,
		&reason, &idemKey, &createdAt, &updatedAt, &closedAt); err != nil {
		return nil, err
	}

	st, err := reservation.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	var releaseReason *reservation.ReleaseReason
	if reason.Valid {
		rr, err := reservation.ParseReleaseReason(reason.String)
		if err != nil {
			return nil, err
		}
		releaseReason = &rr
	}

	return reservation.ReconstructReservation(id, saleID, productID, userID, quantity, st, expiresAt,
		releaseReason, pgconv.UUIDPtrFromPgtype(idemKey), createdAt, updatedAt,
		pgconv.TimePtrFromPgtype(closedAt)), nil
}

func reasonToPgtype(r *reservation.ReleaseReason) pgtype.Text {
	if r == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: r.String(), Valid: true}
}
