// Package ratelimit implements a fixed-window request limiter on Redis counters.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether one more request for key is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Unlimited admits everything.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }

// RedisLimiter counts requests per key in windows of a fixed length.
// When Redis is unreachable requests are admitted.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: prefix,
		now:    time.Now,
		logger: logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := l.windowKey(key)

	count, err := l.rdb.Incr(ctx, windowKey).Result()
	if err != nil {
		l.logger.Warn("Rate limiter unavailable, admitting request", zap.String("key", windowKey), zap.Error(err))
		return true, err
	}

	// first hit in this window owns the expiry
	if count == 1 {
		if err := l.rdb.Expire(ctx, windowKey, l.window).Err(); err != nil {
			l.logger.Warn("Failed to set rate limit window expiry", zap.String("key", windowKey), zap.Error(err))
		}
	}

	return count <= l.limit, nil
}

func (l *RedisLimiter) windowKey(key string) string {
	bucket := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, bucket)
}
