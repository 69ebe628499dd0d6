package messaging

import (
	"context"
	"log/slog"

	"bakery-flashsale/internal/usecase/shared"
)

// LogPublisher stands in for a broker in local runs: events are written to the log and counted as delivered.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evt shared.OutboxEvent) error {
	p.logger.InfoContext(ctx, "reservation event",
		slog.Int64("outbox_id", evt.ID),
		slog.String("event_type", evt.Topic),
		slog.String("key", evt.EventKey),
		slog.String("payload", string(evt.Payload)))
	return nil
}
