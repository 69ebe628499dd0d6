package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Redis       RedisConfig
	Reservation ReservationConfig
	Sweeper     SweeperConfig
	Outbox      OutboxConfig
	Kafka       KafkaConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location,X-Request-ID,Retry-After"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

// Tokens are minted by the storefront auth service; this service only verifies them.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
	Issuer string `envconfig:"JWT_ISSUER" default:""`
}

type RedisConfig struct {
	Addr          string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password      string        `envconfig:"REDIS_PASSWORD" default:""`
	DB            int           `envconfig:"REDIS_DB" default:"0"`
	StockCacheTTL time.Duration `envconfig:"STOCK_CACHE_TTL" default:"2s"`
	LockTTL       time.Duration `envconfig:"JOB_LOCK_TTL" default:"25s"`
}

type ReservationConfig struct {
	HoldWindow time.Duration `envconfig:"HOLD_WINDOW" default:"5m"`
	Retention  time.Duration `envconfig:"RESERVATION_RETENTION" default:"24h"`
}

type SweeperConfig struct {
	Interval      time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
	BatchSize     int           `envconfig:"SWEEP_BATCH_SIZE" default:"200"`
	MaxBatches    int           `envconfig:"SWEEP_MAX_BATCHES" default:"10"`
	LazyItemLimit int           `envconfig:"SWEEP_LAZY_ITEM_LIMIT" default:"50"`
	PurgeInterval time.Duration `envconfig:"PURGE_INTERVAL" default:"10m"`
}

type OutboxConfig struct {
	RelayInterval time.Duration `envconfig:"OUTBOX_RELAY_INTERVAL" default:"5s"`
	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
}

// Empty Brokers switches the outbox relay to the log publisher.
type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:""`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"flashsale.reservations"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Reservation.HoldWindow <= 0 {
		return Config{}, fmt.Errorf("HOLD_WINDOW must be positive, got %s", cfg.Reservation.HoldWindow)
	}
	if cfg.Sweeper.BatchSize <= 0 {
		return Config{}, fmt.Errorf("SWEEP_BATCH_SIZE must be positive, got %d", cfg.Sweeper.BatchSize)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Tokyo",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
		Redis: RedisConfig{
			Addr:          "localhost:16379",
			StockCacheTTL: 2 * time.Second,
			LockTTL:       25 * time.Second,
		},
		Reservation: ReservationConfig{
			HoldWindow: 5 * time.Minute,
			Retention:  24 * time.Hour,
		},
		Sweeper: SweeperConfig{
			Interval:      30 * time.Second,
			BatchSize:     200,
			MaxBatches:    10,
			LazyItemLimit: 50,
			PurgeInterval: 10 * time.Minute,
		},
		Outbox: OutboxConfig{
			RelayInterval: 5 * time.Second,
			BatchSize:     100,
		},
		Kafka: KafkaConfig{
			Topic: "flashsale.reservations",
		},
	}
}
