package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guardrail/errors"
	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/ratelimit"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Window is the fixed window length.
	Window time.Duration
	// MaxRequests is the request budget per key per window.
	MaxRequests int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
	// SkipFunc exempts matching requests from rate limiting entirely.
	SkipFunc func(*gin.Context) bool
	// SkipSuccessful refunds the request when the response status is below 400.
	SkipSuccessful bool
	// SkipFailed refunds the request when the response status is 400 or above.
	SkipFailed bool
	// Store is the window-entry backend. Nil uses an in-process store.
	Store ratelimit.Store
	// Logger receives rejection events. Nil uses the default.
	Logger *logger.Logger
}

// RateLimit returns a Gin middleware applying per-key fixed-window rate
// limiting. Allowed responses carry X-RateLimit-Limit, X-RateLimit-Remaining,
// and X-RateLimit-Reset; rejections answer 429 with a Retry-After header and
// a structured JSON body.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	limiter := ratelimit.New(ratelimit.Config{
		Name:        "http",
		Window:      cfg.Window,
		MaxRequests: cfg.MaxRequests,
		Store:       cfg.Store,
		Logger:      cfg.Logger,
	})

	return func(c *gin.Context) {
		if cfg.SkipFunc != nil && cfg.SkipFunc(c) {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		d := limiter.Allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(d.RetryAfter.Seconds() + 0.999)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				errors.RateLimited().
					WithDetail("limit", d.Limit).
					WithDetail("reset_at", d.ResetAt.Unix()).
					ToResponse())
			return
		}

		c.Next()

		status := c.Writer.Status()
		if (cfg.SkipSuccessful && status < http.StatusBadRequest) ||
			(cfg.SkipFailed && status >= http.StatusBadRequest) {
			// Refund after the response completes, off the request path.
			go func() { _ = limiter.Forgive(context.Background(), key) }()
		}
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey extracts the user_id from the context, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if uid, exists := c.Get("user_id"); exists {
		if s, ok := uid.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
