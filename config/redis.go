package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// ConnectRedis establishes connection to Redis. It returns nil when Redis is not
// configured or unreachable; OTP attempt limiting is then disabled.
func ConnectRedis(ctx context.Context, cfg *Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("REDIS_ADDR not set, OTP attempt limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis connection failed, OTP attempt limiting disabled")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	return client
}
