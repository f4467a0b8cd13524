// Package cache wraps Redis with the handful of typed operations the
// service needs: refresh bookkeeping, API rate limiting, and a mirror of
// the dedup state survivable across restarts.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parsaban/internal/config"
	"parsaban/pkg/logger"
)

// Cache key namespaces
const (
	KeyLastRefresh     = "update:last_refresh"
	KeyRateLimitPrefix = "rate_limit:"
	KeyDedupPrefix     = "dedup:"
)

// Redis wraps the Redis client
type Redis struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis creates a new Redis client and verifies it with a ping
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*Redis, error) {
	log = log.WithComponent("redis")
	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis")

	return &Redis{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    log,
	}, nil
}

// Ping verifies the connection
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// key prepends the namespace prefix to a key
func (c *Redis) key(k string) string {
	return c.keyPrefix + k
}

// Get retrieves a value; returns "" when the key does not exist
func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Set stores a value with an optional TTL
func (c *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes keys
func (c *Redis) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// SetLastRefresh records when the signature feed was last applied
func (c *Redis) SetLastRefresh(ctx context.Context, at time.Time) error {
	return c.Set(ctx, KeyLastRefresh, at.UTC().Format(time.RFC3339), 0)
}

// LastRefresh returns the recorded refresh time; zero when none is stored
func (c *Redis) LastRefresh(ctx context.Context) (time.Time, error) {
	val, err := c.Get(ctx, KeyLastRefresh)
	if err != nil || val == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}

// MarkSeen mirrors a dedup entry so suppression survives process restarts.
// The TTL matches the throttle window; expiry clears the suppression.
func (c *Redis) MarkSeen(ctx context.Context, source, signal string, window time.Duration) error {
	return c.Set(ctx, KeyDedupPrefix+source+":"+signal, "1", window)
}

// WasSeen reports whether a mirrored dedup entry is still live
func (c *Redis) WasSeen(ctx context.Context, source, signal string) (bool, error) {
	val, err := c.Get(ctx, KeyDedupPrefix+source+":"+signal)
	return val != "", err
}

// CheckRateLimit checks and increments a fixed-window request counter.
// Returns (allowed, remaining, resetTime, error).
func (c *Redis) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, key, now.Unix()/int64(window.Seconds()))

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, c.key(windowKey))
	pipe.Expire(ctx, c.key(windowKey), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := incr.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, now.Add(window), nil
}
