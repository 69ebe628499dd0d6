package components

import (
	"context"
	"log/slog"

	"bakery-flashsale/internal/infra/lock"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/scheduler"
	"bakery-flashsale/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		NewScheduler,
	),
	fx.Invoke(func(*scheduler.Scheduler) {}),
)

// NewScheduler shares one Redis lock per job so only one replica runs each cycle.
func NewScheduler(
	lc fx.Lifecycle,
	cfg config.Config,
	expiry commands.ExpiryCommands,
	outbox commands.OutboxCommands,
	rdb *redis.Client,
	logger *slog.Logger,
) (*scheduler.Scheduler, error) {
	s, err := scheduler.New(cfg, expiry, outbox, lock.NewRedisLocker(rdb, cfg.Redis.LockTTL), logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return s.Shutdown()
		},
	})
	return s, nil
}
