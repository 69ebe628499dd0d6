package commands

//go:generate mockgen -source=expiry.go -destination=../../testutil/mock/commands/expiry.go -package=commandsmock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/google/uuid"
)

type SweepResult struct {
	Scanned  int
	Released int
	Skipped  int
	Failed   int
}

type PurgeResult struct {
	Reservations int64
	OutboxEvents int64
}

type ExpiryCommands interface {
	// SweepDue releases every due hold, oldest expiry first, in bounded batches.
	SweepDue(ctx context.Context) (*SweepResult, error)
	// SweepItem releases due holds on one sale item. Used lazily before reads and reserves.
	SweepItem(ctx context.Context, saleID, productID uuid.UUID) (int, error)
	// ReleaseHold is the idempotent release primitive.
	ReleaseHold(ctx context.Context, reservationID uuid.UUID, reason reservation.ReleaseReason) (*ReservationSummary, error)
	// PurgeTerminal deletes closed holds and published events past the retention window.
	PurgeTerminal(ctx context.Context) (*PurgeResult, error)
}

type expiryUseCaseImpl struct {
	releaser
	clock         clock.Clock
	batchSize     int
	maxBatches    int
	lazyItemLimit int
	retention     time.Duration
}

func NewExpiryCommands(
	uow shared.UnitOfWork,
	clk clock.Clock,
	cfg config.Config,
	recorder Recorder,
	cache StockCache,
	logger *slog.Logger,
) ExpiryCommands {
	return &expiryUseCaseImpl{
		releaser: releaser{
			uow:      uow,
			recorder: recorder,
			cache:    cache,
			logger:   logger,
		},
		clock:         clk,
		batchSize:     cfg.Sweeper.BatchSize,
		maxBatches:    max(cfg.Sweeper.MaxBatches, 1),
		lazyItemLimit: max(cfg.Sweeper.LazyItemLimit, 1),
		retention:     cfg.Reservation.Retention,
	}
}

func (uc *expiryUseCaseImpl) SweepDue(ctx context.Context) (*SweepResult, error) {
	start := time.Now()
	now := uc.clock.Now()
	result := &SweepResult{}

	defer func() {
		uc.recorder.SweepCompleted(time.Since(start), result.Released)
	}()

	var (
		failed   []uuid.UUID
		firstErr error
	)
	for batch := 0; batch < uc.maxBatches; batch++ {
		ids, err := uc.uow.CommandReads().DueReservationIDs(ctx, now, failed, uc.batchSize)
		if err != nil {
			return result, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		batchFailed, err := uc.releaseAll(ctx, ids, now, result)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		failed = append(failed, batchFailed...)
		if firstErr == nil {
			firstErr = err
		}

		if len(ids) < uc.batchSize {
			break
		}
	}

	if result.Released > 0 || result.Failed > 0 {
		uc.logger.InfoContext(ctx, "expired holds released",
			slog.Int("released", result.Released),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed))
	}
	if firstErr != nil {
		return result, errs.Wrap(firstErr, fmt.Sprintf("%d due holds could not be released", result.Failed))
	}
	return result, nil
}

func (uc *expiryUseCaseImpl) SweepItem(ctx context.Context, saleID, productID uuid.UUID) (int, error) {
	now := uc.clock.Now()
	ids, err := uc.uow.CommandReads().DueReservationIDsForItem(ctx, saleID, productID, now, uc.lazyItemLimit)
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	result := &SweepResult{}
	_, err = uc.releaseAll(ctx, ids, now, result)
	return result.Released, err
}

// releaseAll keeps going past holds that fail to release. It returns their ids
// and the first failure. Only a cancelled context stops it early.
func (uc *expiryUseCaseImpl) releaseAll(ctx context.Context, ids []uuid.UUID, now time.Time, result *SweepResult) ([]uuid.UUID, error) {
	var (
		failed   []uuid.UUID
		firstErr error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		result.Scanned++

		_, err := uc.release(ctx, id, reservation.ReasonTimeout, now)
		switch {
		case err == nil:
			result.Released++
		case isExpectedRace(err):
			result.Skipped++
			uc.logger.DebugContext(ctx, "hold already closed by a concurrent operation",
				slog.String("reservation_id", id.String()),
				slog.String("reason", err.Error()))
		default:
			result.Failed++
			failed = append(failed, id)
			if firstErr == nil {
				firstErr = err
			}
			uc.logger.ErrorContext(ctx, "release of due hold failed",
				slog.String("reservation_id", id.String()),
				slog.String("error", err.Error()))
		}
	}
	return failed, firstErr
}

func (uc *expiryUseCaseImpl) ReleaseHold(ctx context.Context, reservationID uuid.UUID, reason reservation.ReleaseReason) (*ReservationSummary, error) {
	res, err := uc.release(ctx, reservationID, reason, uc.clock.Now())
	if res == nil {
		return nil, err
	}
	summary := summarize(res)
	return &summary, err
}

func (uc *expiryUseCaseImpl) PurgeTerminal(ctx context.Context) (*PurgeResult, error) {
	before := uc.clock.Now().Add(-uc.retention)
	result := &PurgeResult{}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		n, err := tx.Reservations().PurgeTerminal(ctx, before)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		m, err := tx.Outbox().PurgePublished(ctx, before)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		result.Reservations, result.OutboxEvents = n, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Reservations > 0 || result.OutboxEvents > 0 {
		uc.logger.InfoContext(ctx, "purged closed records",
			slog.Int64("reservations", result.Reservations),
			slog.Int64("outbox_events", result.OutboxEvents),
			slog.Time("before", before))
	}
	return result, nil
}
