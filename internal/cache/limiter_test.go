package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"taskplanner/internal/cache"
	"taskplanner/internal/config"
)

func newTestLimiter(t *testing.T, limit int) (*cache.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewLimiter(client, limit, time.Minute), mr
}

func TestLimiterAllowsUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !allowed {
			t.Fatalf("Request %d should have been allowed", i+1)
		}
	}
}

func TestLimiterBlocksOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	ctx := context.Background()

	limiter.Allow(ctx, "1.2.3.4")
	limiter.Allow(ctx, "1.2.3.4")

	allowed, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("Request over the limit should have been blocked")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)
	ctx := context.Background()

	limiter.Allow(ctx, "1.2.3.4")

	allowed, err := limiter.Allow(ctx, "5.6.7.8")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Error("A different client should have its own budget")
	}
}

func TestLimiterFailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	limiter := cache.NewLimiter(client, 1, time.Minute)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "1.2.3.4")
	if err == nil {
		t.Error("Expected an error when Redis is down")
	}
	if !allowed {
		t.Error("Limiter must fail open when Redis is down")
	}
}
