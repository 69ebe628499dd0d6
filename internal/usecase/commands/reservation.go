package commands

//go:generate mockgen -source=reservation.go -destination=../../testutil/mock/commands/reservation.go -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
)

var errIdempotencyRace = errs.New("idempotency key inserted concurrently")

type ReserveRequest struct {
	SaleID         uuid.UUID
	ProductID      uuid.UUID
	UserID         uuid.UUID
	Quantity       int
	IdempotencyKey *uuid.UUID
}

type ReserveResult struct {
	Reservation ReservationSummary
	Replayed    bool
}

type CancelResult struct {
	Reservation ReservationSummary
	// AlreadyReleased is set when the hold had expired before the cancel arrived.
	AlreadyReleased bool
}

type ReservationCommands interface {
	Reserve(ctx context.Context, req ReserveRequest) (*ReserveResult, error)
	ConfirmPurchase(ctx context.Context, reservationID uuid.UUID) (*ReservationSummary, error)
	Cancel(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CancelResult, error)
}

type reservationUseCaseImpl struct {
	releaser
	sweeper    ExpiryCommands
	clock      clock.Clock
	holdWindow time.Duration
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	sweeper ExpiryCommands,
	clk clock.Clock,
	cfg config.Config,
	recorder Recorder,
	cache StockCache,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationUseCaseImpl{
		releaser: releaser{
			uow:      uow,
			recorder: recorder,
			cache:    cache,
			logger:   logger,
		},
		sweeper:    sweeper,
		clock:      clk,
		holdWindow: cfg.Reservation.HoldWindow,
	}
}

func (uc *reservationUseCaseImpl) Reserve(ctx context.Context, req ReserveRequest) (result *ReserveResult, err error) {
	defer func() {
		uc.recorder.ReservationOutcome(reserveOutcome(result, err))
	}()

	hold := reservation.Hold{
		SaleID:         req.SaleID,
		ProductID:      req.ProductID,
		UserID:         req.UserID,
		Quantity:       req.Quantity,
		IdempotencyKey: req.IdempotencyKey,
	}
	if req.Quantity < 1 {
		return nil, errs.Mark(reservation.ErrInvalidQuantity, errs.ErrDomainValidation)
	}

	// a retry of a request that already succeeded gets its hold back even after the sale closed
	if replayed, err := uc.replay(ctx, hold); replayed != nil || err != nil {
		return replayed, err
	}

	now := uc.clock.Now()
	reads := uc.uow.CommandReads()

	sale, err := reads.SaleByID(ctx, req.SaleID)
	if err != nil {
		return nil, lookupErr(err, errs.ErrSaleNotFound)
	}
	if !sale.IsActiveAt(now) {
		return nil, errs.ErrSaleNotActive
	}
	item, ok := sale.ItemFor(req.ProductID)
	if !ok {
		return nil, errs.ErrSaleItemNotFound
	}

	if _, err := uc.sweeper.SweepItem(ctx, req.SaleID, req.ProductID); err != nil {
		uc.logger.WarnContext(ctx, "lazy expiry failed before reserve",
			slog.String("sale_id", req.SaleID.String()),
			slog.String("product_id", req.ProductID.String()),
			slog.String("error", err.Error()))
	}

	quotaKey := shared.QuotaKey{SaleID: req.SaleID, ProductID: req.ProductID, UserID: req.UserID}
	claimed, err := reads.QuotaClaimed(ctx, quotaKey)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if claimed+req.Quantity > item.PerUserLimit() {
		return nil, errs.ErrLimitExceeded
	}

	var created *reservation.Reservation
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		// sale item row first, quota row second
		limit, err := tx.Stock().TryDecrement(ctx, req.SaleID, req.ProductID, req.Quantity)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrSaleItemNotFound
			}
			return conditionalErr(err, errs.ErrInsufficientStock)
		}

		if _, err := tx.Quotas().Claim(ctx, quotaKey, req.Quantity, limit); err != nil {
			return conditionalErr(err, errs.ErrLimitExceeded)
		}

		res, err := reservation.NewReservation(now, uc.holdWindow, hold)
		if err != nil {
			return domainErr(err)
		}
		if err := tx.Reservations().Create(ctx, res); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) && req.IdempotencyKey != nil {
				return errIdempotencyRace
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		created = res
		return appendEvent(ctx, tx, reservation.EventCreated, res, now)
	})
	if errs.Is(err, errIdempotencyRace) {
		replayed, rerr := uc.replay(ctx, hold)
		if rerr != nil {
			return nil, rerr
		}
		if replayed == nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return replayed, nil
	}
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, req.SaleID)
	return &ReserveResult{Reservation: summarize(created)}, nil
}

// replay answers a retried request carrying an idempotency key already used by this user.
func (uc *reservationUseCaseImpl) replay(ctx context.Context, hold reservation.Hold) (*ReserveResult, error) {
	if hold.IdempotencyKey == nil {
		return nil, nil
	}
	existing, err := uc.uow.CommandReads().ReservationByIdempotencyKey(ctx, hold.UserID, *hold.IdempotencyKey)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !existing.SameRequest(hold) {
		return nil, errs.ErrIdempotencyConflict
	}
	return &ReserveResult{Reservation: summarize(existing), Replayed: true}, nil
}

func (uc *reservationUseCaseImpl) ConfirmPurchase(ctx context.Context, reservationID uuid.UUID) (*ReservationSummary, error) {
	now := uc.clock.Now()

	var (
		current     *reservation.Reservation
		expiredHold bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, expiredHold = nil, false

		res, err := tx.Reservations().FindForUpdate(ctx, reservationID)
		if err != nil {
			return lookupErr(err, errs.ErrReservationNotFound)
		}
		current = res

		if res.Status().IsTerminal() {
			return errs.ErrAlreadyTerminal
		}
		if res.IsDueAt(now) {
			// nobody swept it yet; release it here and report the expiry after commit
			expiredHold = true
			return releaseLocked(ctx, tx, res, reservation.ReasonTimeout, now)
		}

		if err := res.Complete(now); err != nil {
			return domainErr(err)
		}
		if err := tx.Reservations().UpdateStatus(ctx, res); err != nil {
			return conditionalErr(err, errs.ErrAlreadyTerminal)
		}
		if err := tx.Stock().FoldIntoSold(ctx, res.SaleID(), res.ProductID(), res.Quantity()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return appendEvent(ctx, tx, reservation.EventCompleted, res, now)
	})
	if err != nil {
		return nil, err
	}

	if expiredHold {
		uc.released(ctx, current, reservation.ReasonTimeout)
		return nil, errs.ErrReservationExpired
	}

	uc.recorder.HoldCompleted()
	uc.invalidate(ctx, current.SaleID())
	summary := summarize(current)
	return &summary, nil
}

func (uc *reservationUseCaseImpl) Cancel(ctx context.Context, reservationID uuid.UUID, actor user.Actor) (*CancelResult, error) {
	now := uc.clock.Now()

	var (
		current        *reservation.Reservation
		alreadyExpired bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, alreadyExpired = nil, false

		res, err := tx.Reservations().FindForUpdate(ctx, reservationID)
		if err != nil {
			return lookupErr(err, errs.ErrReservationNotFound)
		}
		if !actor.Owns(res.UserID()) {
			return errs.ErrNotOwner
		}
		current = res

		switch res.Status() {
		case reservation.StatusExpired:
			// lost the race with the sweeper; the stock is already back
			alreadyExpired = true
			return nil
		case reservation.StatusCompleted:
			return errs.ErrAlreadyTerminal
		}
		return releaseLocked(ctx, tx, res, reservation.ReasonCancelled, now)
	})
	if err != nil {
		return nil, err
	}

	if !alreadyExpired {
		uc.released(ctx, current, reservation.ReasonCancelled)
	}
	return &CancelResult{Reservation: summarize(current), AlreadyReleased: alreadyExpired}, nil
}

func reserveOutcome(result *ReserveResult, err error) string {
	switch {
	case err == nil && result != nil && result.Replayed:
		return OutcomeReplayed
	case err == nil:
		return OutcomeReserved
	case errs.Is(err, errs.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errs.Is(err, errs.ErrLimitExceeded):
		return OutcomeLimitExceeded
	case errs.Is(err, errs.ErrSaleNotActive):
		return OutcomeSaleNotActive
	case errs.Is(err, errs.ErrDatabaseOperationFailed):
		return OutcomeError
	default:
		return OutcomeRejected
	}
}
