package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// bucket tracks the token state for one client IP.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter is a per-IP token bucket. Audits are expensive (each one is
// an outbound fetch), so the limits are deliberately tight.
type RateLimiter struct {
	buckets        map[string]*bucket
	mu             sync.Mutex
	rate           float64 // tokens per second
	bucketSize     float64 // maximum tokens
	refillInterval time.Duration
	lastPrune      time.Time
}

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		bucketSize:     bucketSize,
		refillInterval: time.Second,
		lastPrune:      time.Now(),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := time.Now()

		b, exists := rl.buckets[ip]
		if !exists {
			b = &bucket{tokens: rl.bucketSize, lastRefill: now}
			rl.buckets[ip] = b
		}

		// Refill tokens based on time elapsed
		elapsed := now.Sub(b.lastRefill)
		newTokens := float64(elapsed) / float64(rl.refillInterval) * rl.rate
		b.tokens = min(rl.bucketSize, b.tokens+newTokens)
		b.lastRefill = now

		if b.tokens < 1 {
			rl.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		b.tokens--

		if now.Sub(rl.lastPrune) > time.Hour {
			rl.prune(now)
		}
		rl.mu.Unlock()

		c.Next()
	}
}

// prune drops buckets idle long enough to be full again. Caller holds mu.
func (rl *RateLimiter) prune(now time.Time) {
	for ip, b := range rl.buckets {
		if now.Sub(b.lastRefill) > time.Hour {
			delete(rl.buckets, ip)
		}
	}
	rl.lastPrune = now
}
