package rdx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"

	"blockpress/config"
)

const pingTimeout = 5 * time.Second

// Connect opens a Redis client and pings it. An empty address means Redis is
// not configured and (nil, nil) is returned.
func Connect(ctx context.Context, cfg config.RedisConfig, logger arbor.ILogger) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Info().Msg("Redis not configured, search index disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Connected to Redis")
	return client, nil
}
