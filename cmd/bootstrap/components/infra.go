package components

import (
	"context"
	"log/slog"

	"bakery-flashsale/internal/infra/cache"
	"bakery-flashsale/internal/infra/messaging"
	"bakery-flashsale/internal/metrics"
	"bakery-flashsale/internal/pkg/config"
	"bakery-flashsale/internal/usecase/commands"
	"bakery-flashsale/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	cacheModule,
	metricsModule,
	messagingModule,
)

var cacheModule = fx.Module("infra/cache",
	fx.Provide(
		NewStockCache,
		func(c *cache.StockCache) commands.StockCache { return c },
		func(c *cache.StockCache) queries.StockSnapshotCache { return c },
	),
)

var metricsModule = fx.Module("infra/metrics",
	fx.Provide(
		metrics.New,
		func(m *metrics.Metrics) commands.Recorder { return m },
	),
)

var messagingModule = fx.Module("infra/messaging",
	fx.Provide(
		NewEventPublisher,
	),
)

func NewStockCache(rdb *redis.Client, cfg config.Config) *cache.StockCache {
	return cache.NewStockCache(rdb, cfg.Redis.StockCacheTTL)
}

// NewEventPublisher falls back to logging events when no broker is configured.
func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) commands.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Warn("Kafkaが未設定のため、イベントはログに出力します")
		return messaging.NewLogPublisher(logger)
	}

	publisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka))
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})
	logger.Info("Kafkaへの配信を有効化しました",
		slog.Any("brokers", cfg.Kafka.Brokers),
		slog.String("topic", cfg.Kafka.Topic))
	return publisher
}
