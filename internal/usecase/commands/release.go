package commands

import (
	"context"
	"log/slog"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
)

// releaseLocked returns a row-locked pending hold to stock: status, counters,
// quota and outbox change in the caller's transaction or not at all.
func releaseLocked(ctx context.Context, tx shared.Tx, res *reservation.Reservation, reason reservation.ReleaseReason, now time.Time) error {
	if err := res.Release(now, reason); err != nil {
		return domainErr(err)
	}
	if err := tx.Reservations().UpdateStatus(ctx, res); err != nil {
		return conditionalErr(err, errs.ErrAlreadyTerminal)
	}
	if err := tx.Stock().Return(ctx, res.SaleID(), res.ProductID(), res.Quantity()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	key := shared.QuotaKey{SaleID: res.SaleID(), ProductID: res.ProductID(), UserID: res.UserID()}
	if err := tx.Quotas().Return(ctx, key, res.Quantity()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return appendEvent(ctx, tx, reservation.EventExpired, res, now)
}

// releaser is the release primitive shared by cancel, commit-after-expiry and the sweeps.
type releaser struct {
	uow      shared.UnitOfWork
	recorder Recorder
	cache    StockCache
	logger   *slog.Logger
}

// release transitions a pending hold to expired. A hold that is already
// terminal is returned together with ErrAlreadyTerminal and left untouched.
func (r *releaser) release(ctx context.Context, id uuid.UUID, reason reservation.ReleaseReason, now time.Time) (*reservation.Reservation, error) {
	var current *reservation.Reservation
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current = nil
		res, err := tx.Reservations().FindForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, errs.ErrReservationNotFound)
		}
		current = res
		if res.Status().IsTerminal() {
			return errs.ErrAlreadyTerminal
		}
		return releaseLocked(ctx, tx, res, reason, now)
	})
	if err != nil {
		return current, err
	}
	r.released(ctx, current, reason)
	return current, nil
}

func (r *releaser) released(ctx context.Context, res *reservation.Reservation, reason reservation.ReleaseReason) {
	r.recorder.HoldReleased(reason)
	r.invalidate(ctx, res.SaleID())
}

func (r *releaser) invalidate(ctx context.Context, saleID uuid.UUID) {
	if err := r.cache.Invalidate(ctx, saleID); err != nil {
		r.logger.WarnContext(ctx, "failed to invalidate stock cache",
			slog.String("sale_id", saleID.String()),
			slog.String("error", err.Error()))
	}
}
