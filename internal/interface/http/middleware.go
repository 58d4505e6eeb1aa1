package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/smart-wardrobe/internal/infra/config"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// rateLimitMiddleware throttles session calls per client IP. Routes listed in
// exempt (gin route patterns) hold one long-lived connection and are not counted.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger, exempt ...string) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(exempt))
	for _, route := range exempt {
		skip[route] = struct{}{}
	}
	limiter := newSessionRateLimiter(cfg)
	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}
		ip := c.ClientIP()
		ok, retryAfter := limiter.allow(ip, time.Now())
		if ok {
			c.Next()
			return
		}
		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path, "retry_after_s", seconds)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// sessionRateLimiter is a token bucket per client IP. Idle buckets are
// dropped after ttl.
type sessionRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perMinute float64
	burst     float64
	ttl       time.Duration
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newSessionRateLimiter(cfg config.RateLimitConfig) *sessionRateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &sessionRateLimiter{
		buckets:   make(map[string]*bucket),
		perMinute: float64(cfg.RequestsPerMinute),
		burst:     float64(burst),
		ttl:       5 * time.Minute,
	}
}

// allow spends one token for ip. When the bucket is empty it reports how long
// until the next token is available.
func (l *sessionRateLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[ip] = b
	} else if elapsed := now.Sub(b.lastSeen).Minutes(); elapsed > 0 {
		b.tokens = math.Min(l.burst, b.tokens+elapsed*l.perMinute)
		b.lastSeen = now
	}
	l.evictLocked(now)

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing / l.perMinute * float64(time.Minute))
	}
	b.tokens--
	return true, 0
}

func (l *sessionRateLimiter) evictLocked(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.ttl {
			delete(l.buckets, ip)
		}
	}
}
