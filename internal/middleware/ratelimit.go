package middleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"taskplanner/internal/config"
)

// ClientLimiter is satisfied by cache.Limiter.
type ClientLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit enforces a shared per-client budget via a ClientLimiter.
// Limiter errors fail open and are logged.
func RateLimit(limiter ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("rate limiter unavailable, allowing request: %v", err)
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitInMemory keeps one token bucket per client IP and evicts
// idle entries on the configured interval. Cancelling ctx stops the
// cleanup goroutine.
func RateLimitInMemory(ctx context.Context, cfg config.RateLimitConfig) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*limiterEntry)
	)

	limit := rate.Limit(float64(cfg.RequestsPerMin) / 60.0)

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				for ip, entry := range clients {
					if time.Since(entry.lastSeen) > cfg.CleanupInterval {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		entry, ok := clients[ip]
		if !ok {
			entry = &limiterEntry{limiter: rate.NewLimiter(limit, cfg.BurstSize)}
			clients[ip] = entry
		}
		entry.lastSeen = time.Now()
		mu.Unlock()

		if !entry.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
