package commands

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"bakery-flashsale/internal/pkg/clock"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"
)

const maxErrorLength = 500

type RelayResult struct {
	Published int
	Failed    int
	// Deferred counts events held back because an earlier event with the same key failed.
	Deferred int
}

type OutboxCommands interface {
	// Relay publishes one batch of pending events. Delivery is at least once.
	Relay(ctx context.Context) (*RelayResult, error)
}

type outboxUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher EventPublisher
	clock     clock.Clock
	recorder  Recorder
	batchSize int
	logger    *slog.Logger
}

func NewOutboxCommands(
	uow shared.UnitOfWork,
	publisher EventPublisher,
	clk clock.Clock,
	cfg config.Config,
	recorder Recorder,
	logger *slog.Logger,
) OutboxCommands {
	return &outboxUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		recorder:  recorder,
		batchSize: max(cfg.Outbox.BatchSize, 1),
		logger:    logger,
	}
}

func (uc *outboxUseCaseImpl) Relay(ctx context.Context) (*RelayResult, error) {
	var result RelayResult

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = RelayResult{}

		events, err := tx.Outbox().LockUnpublished(ctx, uc.batchSize)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		// events of one hold leave in id order; a failure holds back the rest of its key
		failedKeys := make(map[string]struct{})
		for _, evt := range events {
			if _, blocked := failedKeys[evt.EventKey]; blocked {
				result.Deferred++
				continue
			}
			if perr := uc.publisher.Publish(ctx, evt); perr != nil {
				failedKeys[evt.EventKey] = struct{}{}
				result.Failed++
				uc.logger.WarnContext(ctx, "outbox publish failed",
					slog.Int64("event_id", evt.ID),
					slog.String("topic", evt.Topic),
					slog.Int("attempts", evt.Attempts+1),
					slog.String("error", perr.Error()))
				if err := tx.Outbox().MarkFailed(ctx, evt.ID, truncate(perr.Error(), maxErrorLength)); err != nil {
					return errs.Mark(err, errs.ErrDatabaseOperationFailed)
				}
				continue
			}

			result.Published++
			if err := tx.Outbox().MarkPublished(ctx, evt.ID, uc.clock.Now()); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for range result.Published {
		uc.recorder.OutboxPublished(true)
	}
	for range result.Failed {
		uc.recorder.OutboxPublished(false)
	}
	return &result, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
