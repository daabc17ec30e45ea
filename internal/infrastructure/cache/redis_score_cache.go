package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisScoreCache implements port.ScoreCache on redis. Collaborator scores
// are cached by payload hash with a bounded TTL; cache problems are logged
// and treated as misses, never as request failures.
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisScoreCache creates a cache against the given redis address.
func NewRedisScoreCache(addr string, ttl time.Duration, logger *slog.Logger) *RedisScoreCache {
	return &RedisScoreCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached score for the key, if any.
func (c *RedisScoreCache) Get(ctx context.Context, key string) (float64, bool) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("score cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return 0, false
	}

	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		c.logger.Warn("score cache holds malformed value", slog.String("key", key))
		return 0, false
	}

	return score, true
}

// Set stores the score under the key with the configured TTL.
func (c *RedisScoreCache) Set(ctx context.Context, key string, score float64) {
	err := c.client.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), c.ttl).Err()
	if err != nil {
		c.logger.Warn("score cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Close releases the redis connection.
func (c *RedisScoreCache) Close() error {
	return c.client.Close()
}
