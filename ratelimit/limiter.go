package ratelimit

import (
	"context"
	"time"

	"github.com/kbukum/guardrail/logger"
)

// Config configures a Limiter.
type Config struct {
	// Name identifies this limiter in logs.
	Name string
	// Window is the fixed window length.
	Window time.Duration
	// MaxRequests is the request budget per key per window.
	MaxRequests int
	// Store is the window-entry backend. Nil creates a MemoryStore with the
	// default sweep interval.
	Store Store
	// Logger receives rejection events. Nil uses the default.
	Logger *logger.Logger
}

func (c *Config) applyDefaults() {
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = 100
	}
	if c.Store == nil {
		c.Store = NewMemoryStore(0)
	}
}

// Decision is the verdict for a single request.
type Decision struct {
	// Allowed reports whether the request fits in the window.
	Allowed bool
	// Limit is the window budget.
	Limit int
	// Remaining is the budget left after this request.
	Remaining int
	// ResetAt marks the end of the current window.
	ResetAt time.Time
	// RetryAfter is how long a rejected caller should wait.
	RetryAfter time.Duration
}

// Limiter applies fixed-window counting per key on top of a Store.
type Limiter struct {
	cfg Config
	log *logger.Logger
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	cfg.applyDefaults()
	return &Limiter{
		cfg: cfg,
		log: logger.OrDefault(cfg.Logger).WithComponent("ratelimit"),
	}
}

// Allow counts one request against key and returns the verdict. Store errors
// fail open: an unreachable backend should not take down the caller's
// traffic.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	e, err := l.cfg.Store.Increment(ctx, key, l.cfg.MaxRequests, l.cfg.Window)
	if err != nil {
		l.log.Error("store unavailable, allowing request", logger.Fields(
			logger.FieldKey, key,
			logger.FieldError, err.Error(),
		))
		return Decision{
			Allowed:   true,
			Limit:     l.cfg.MaxRequests,
			Remaining: l.cfg.MaxRequests,
			ResetAt:   time.Now().Add(l.cfg.Window),
		}
	}

	d := Decision{
		Allowed:   e.Used <= e.Limit,
		Limit:     e.Limit,
		Remaining: e.Remaining(),
		ResetAt:   e.ResetAt,
	}
	if !d.Allowed {
		d.RetryAfter = time.Until(e.ResetAt)
		if d.RetryAfter < 0 {
			d.RetryAfter = 0
		}
		l.log.Warn("request rejected", logger.Fields(
			logger.FieldKey, key,
			logger.FieldLimit, d.Limit,
			logger.FieldResetAt, d.ResetAt.UnixMilli(),
		))
	}
	return d
}

// Forgive returns one unit of budget to key, used by callers that exempt
// certain outcomes (for example, successful logins) after the fact. The
// read-modify-write is not atomic; an occasional lost forgiveness under
// concurrency only makes the limit marginally stricter.
func (l *Limiter) Forgive(ctx context.Context, key string) error {
	e, err := l.cfg.Store.Get(ctx, key)
	if err != nil || e == nil || e.Used == 0 {
		return err
	}
	e.Used--
	return l.cfg.Store.Set(ctx, key, e)
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.cfg.Store.Reset(ctx, key)
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.cfg.Window }

// MaxRequests returns the configured per-window budget.
func (l *Limiter) MaxRequests() int { return l.cfg.MaxRequests }
