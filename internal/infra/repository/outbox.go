package repository

import (
	"context"
	"time"

	"bakery-flashsale/internal/infra"
	"bakery-flashsale/internal/infra/db"
	"bakery-flashsale/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

const (
	appendOutboxSQL = `
INSERT INTO outbox_events (topic, event_key, payload)
VALUES ($1, $2, $3)`

	// SKIP LOCKED lets several relays drain the table without blocking each other.
	lockUnpublishedSQL = `
SELECT id, topic, event_key, payload, created_at, attempts
FROM outbox_events
WHERE published_at IS NULL
ORDER BY id
LIMIT $1
FOR UPDATE SKIP LOCKED`

	markPublishedSQL = `
UPDATE outbox_events
SET published_at = $2, attempts = attempts + 1, last_error = NULL
WHERE id = $1`

	markFailedSQL = `
UPDATE outbox_events
SET attempts = attempts + 1, last_error = $2
WHERE id = $1`

	purgePublishedSQL = `
DELETE FROM outbox_events
WHERE published_at IS NOT NULL AND published_at < $1`
)

type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(db db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Append(ctx context.Context, msg shared.OutboxMessage) error {
	if _, err := r.db.Exec(ctx, appendOutboxSQL, msg.Topic, msg.EventKey, msg.Payload); err != nil {
		return infra.WrapRepoErr("failed to append outbox event", err)
	}
	return nil
}

func (r *OutboxRepository) LockUnpublished(ctx context.Context, limit int) ([]shared.OutboxEvent, error) {
	rows, err := r.db.Query(ctx, lockUnpublishedSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock outbox events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shared.OutboxEvent, error) {
		var e shared.OutboxEvent
		err := row.Scan(&e.ID, &e.Topic, &e.EventKey, &e.Payload, &e.CreatedAt, &e.Attempts)
		return e, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan outbox events", err)
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.Exec(ctx, markPublishedSQL, id, at); err != nil {
		return infra.WrapRepoErr("failed to mark outbox event published", err)
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	if _, err := r.db.Exec(ctx, markFailedSQL, id, reason); err != nil {
		return infra.WrapRepoErr("failed to record outbox failure", err)
	}
	return nil
}

func (r *OutboxRepository) PurgePublished(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, purgePublishedSQL, before)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to purge outbox events", err)
	}
	return tag.RowsAffected(), nil
}
