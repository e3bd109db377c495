// Package cache holds the Redis-backed request counter used for rate
// limiting when multiple replicas need to share one budget.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"taskplanner/internal/config"
)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Limiter is a fixed-window counter: one key per client per window,
// incremented on every request.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: limit, window: window}
}

// Allow reports whether key may make another request in the current
// window. A Redis failure fails open: the error is returned alongside
// true so the caller can log it without blocking traffic.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := "ratelimit:" + key + ":" + strconv.FormatInt(window, 10)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return count <= int64(l.limit), nil
}
