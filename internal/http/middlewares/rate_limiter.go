package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter for the unauthenticated
// auth endpoints. It is per process; the redis-backed login throttle is
// what actually protects accounts across replicas.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string]*bucket
}

type bucket struct {
	hits     int
	resetsAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}

	return &RateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*bucket),
	}
}

func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		retryAfter, limited := rl.take(key)

		if limited {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests. Please try again shortly.",
				"code":    "rate_limited",
			})
			return
		}

		c.Next()
	}
}

// take counts one hit against the key's current window and reports whether
// the caller is over the limit, along with the seconds until the window
// resets.
func (rl *RateLimiter) take(key string) (retryAfter int, limited bool) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]

	if !ok || now.After(b.resetsAt) {
		rl.buckets[key] = &bucket{hits: 1, resetsAt: now.Add(rl.window)}
		return 0, false
	}

	if b.hits >= rl.limit {
		retryAfter = int(time.Until(b.resetsAt).Seconds())

		if retryAfter < 0 {
			retryAfter = 0
		}

		return retryAfter, true
	}

	b.hits++

	return 0, false
}

// KeyByIP buckets unauthenticated traffic per client address.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user id when the middleware has
// stashed one.
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := UserIDFromContext(c)

	if ok && id != "" {
		return "user:" + id
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP when configured
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
