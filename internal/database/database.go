package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/valpere/pogoda/internal/config"
)

const pingTimeout = 5 * time.Second

// ConnectRedis opens the weather cache connection. It returns a nil client
// and no error when the cache is disabled.
func ConnectRedis(ctx context.Context, cfg *config.RedisConfig, logger *zerolog.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Redis cache disabled")
		return nil, nil
	}

	rdb := redis.NewClient(redisOptions(cfg))
	if err := verifyRedis(ctx, rdb, cfg, logger); err != nil {
		return nil, err
	}
	return rdb, nil
}

// verifyRedis pings rdb and closes it when the server does not answer.
func verifyRedis(ctx context.Context, rdb *redis.Client, cfg *config.RedisConfig, logger *zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().
		Str("addr", redisAddr(cfg)).
		Int("db", cfg.DB).
		Msg("Connected to Redis")
	return nil
}

func redisOptions(cfg *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     redisAddr(cfg),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func redisAddr(cfg *config.RedisConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
