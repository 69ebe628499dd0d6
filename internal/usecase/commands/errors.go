package commands

import (
	"context"
	"encoding/json"
	"time"

	"bakery-flashsale/internal/domain/flashsale"
	"bakery-flashsale/internal/domain/reservation"
	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/pkg/errs"
	"bakery-flashsale/internal/usecase/shared"
)

// lookupErr maps a repository read failure onto the caller-facing sentinel.
func lookupErr(err error, notFound error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return notFound
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

// conditionalErr maps a conditional write that matched no row onto conflict.
func conditionalErr(err error, conflict error) error {
	if infra.IsKind(err, infra.KindConflict) {
		return conflict
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

func domainErr(err error) error {
	switch {
	case errs.Is(err, reservation.ErrNotPending):
		return errs.ErrAlreadyTerminal
	case errs.Is(err, reservation.ErrHoldExpired):
		return errs.ErrReservationExpired
	case errs.Is(err, flashsale.ErrInsufficientStock):
		return errs.ErrInsufficientStock
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}
}

// isExpectedRace reports outcomes a background sweep loses to a concurrent commit or cancel.
func isExpectedRace(err error) bool {
	return errs.Is(err, errs.ErrAlreadyTerminal) || errs.Is(err, errs.ErrReservationNotFound)
}

func appendEvent(ctx context.Context, tx shared.Tx, t reservation.EventType, res *reservation.Reservation, at time.Time) error {
	payload, err := json.Marshal(reservation.NewEvent(t, res, at))
	if err != nil {
		return errs.Wrap(err, "marshal reservation event")
	}
	msg := shared.OutboxMessage{
		Topic:    string(t),
		EventKey: res.ID().String(),
		Payload:  payload,
	}
	if err := tx.Outbox().Append(ctx, msg); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
