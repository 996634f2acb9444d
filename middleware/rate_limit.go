package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// clientWindow tracks one caller's request count within its current window.
type clientWindow struct {
	count   int
	started time.Time
}

// RateLimiter is a fixed-window request counter keyed per caller. Each key
// gets its own window, so a burst from one client never resets another's.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	rate    int
	window  time.Duration
}

// NewRateLimiter creates a limiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*clientWindow),
		rate:    rate,
		window:  window,
	}
}

// Allow records one request for key and reports whether it stays within
// the limit for the current window.
func (rl *RateLimiter) Allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.started) >= rl.window {
		rl.prune(now)
		rl.windows[key] = &clientWindow{count: 1, started: now}
		return true
	}
	if w.count >= rl.rate {
		return false
	}
	w.count++
	return true
}

// prune drops expired windows. Called with the lock held.
func (rl *RateLimiter) prune(now time.Time) {
	for key, w := range rl.windows {
		if now.Sub(w.started) >= rl.window {
			delete(rl.windows, key)
		}
	}
}

// RateLimit throttles requests per authenticated API client; callers
// without a client identity are counted by IP. Runs after AuthMiddleware
// so the client id is already in the context. A non-positive rate
// disables throttling.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		if rate <= 0 {
			c.Next()
			return
		}

		key := GetClientID(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.Allow(key, time.Now()) {
			slog.Warn("rate limit exceeded",
				"client_id", key,
				"request_id", GetRequestID(c),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
