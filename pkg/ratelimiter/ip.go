package ratelimiter

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"anoa.com/campusforum/pkg/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPLimiter is an in-process token bucket per client IP.
type IPLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

// NewIPLimiter allows requests per window with the whole window as burst.
func NewIPLimiter(requests int, window time.Duration) *IPLimiter {
	return &IPLimiter{
		rate:        rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		lastCleanup: time.Now(),
	}
}

func (l *IPLimiter) get(key string) *rate.Limiter {
	if lim, ok := l.limiters.Load(key); ok {
		return lim.(*rate.Limiter)
	}
	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again.
func (l *IPLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

func (l *IPLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Middleware rejects callers over their budget with 429 and Retry-After.
func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		lim := l.get(key)
		if lim.Allow() {
			c.Next()
			return
		}

		r := lim.Reserve()
		delay := r.Delay()
		r.Cancel()
		retryAfter := max(int(delay.Seconds()), 1)

		logger.FromContext(c.Request.Context()).Warn("rate limit exceeded",
			"key", key,
			"path", c.FullPath(),
			"retry_after", retryAfter,
		)

		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
	}
}
