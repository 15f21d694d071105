package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agendamoz/barber-platform/cmd/mainconfig"
	appconfig "github.com/agendamoz/barber-platform/internal/config"
	"github.com/agendamoz/barber-platform/internal/notify"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDatabasePool opens the pgx connection pool.
func BuildDatabasePool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	return pool, nil
}

// BuildReceiptQueue returns the receipt queue: in-memory for local
// development, SQS otherwise.
func BuildReceiptQueue(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.Queue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.UseMemoryQueue {
		logger.Info("using in-memory receipt queue")
		return notify.NewMemoryQueue(64), nil
	}
	if strings.TrimSpace(cfg.ReceiptQueueURL) == "" {
		return nil, fmt.Errorf("bootstrap: RECEIPT_QUEUE_URL is required without USE_MEMORY_QUEUE")
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ReceiptQueueURL), nil
}
