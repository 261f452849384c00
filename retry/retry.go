package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kbukum/guardrail/logger"
)

// Config configures retry behavior. Zero values fall back to defaults, so a
// partially filled Config acts as a set of overrides.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int
	// BaseDelay is the first backoff delay.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth of the backoff.
	MaxDelay time.Duration
	// ExponentialBase is the backoff growth factor.
	ExponentialBase float64
	// JitterMax bounds the uniform random jitter added to each delay.
	JitterMax time.Duration
	// RetryableCodes is the set of string error codes worth retrying.
	RetryableCodes []string
	// RetryableStatuses is the set of HTTP status codes worth retrying.
	RetryableStatuses []int
	// RetryIf, when set, replaces code/status classification entirely.
	RetryIf func(error) bool
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Logger receives a structured event per attempt. Nil uses the default.
	Logger *logger.Logger
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		MaxDelay:          30 * time.Second,
		ExponentialBase:   2,
		JitterMax:         100 * time.Millisecond,
		RetryableCodes:    DefaultRetryableCodes,
		RetryableStatuses: DefaultRetryableStatuses,
	}
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.ExponentialBase <= 0 {
		c.ExponentialBase = 2
	}
	if c.JitterMax < 0 {
		c.JitterMax = 0
	}
	if c.RetryableCodes == nil {
		c.RetryableCodes = DefaultRetryableCodes
	}
	if c.RetryableStatuses == nil {
		c.RetryableStatuses = DefaultRetryableStatuses
	}
}

// Do executes fn with retry. The last failure is returned when attempts run
// out; a failure outside the retryable set returns immediately. No delay
// occurs after the final attempt.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg.applyDefaults()

	log := logger.OrDefault(cfg.Logger).WithComponent("retry")
	class := newClassification(cfg.RetryableCodes, cfg.RetryableStatuses)

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info("operation recovered", logger.Fields(
					logger.FieldAttempt, attempt,
					logger.FieldMaxAttempts, cfg.MaxAttempts,
				))
			}
			return result, nil
		}
		lastErr = err

		retryable := class.retryable(err)
		if cfg.RetryIf != nil {
			retryable = cfg.RetryIf(err)
		}
		if !retryable {
			log.Debug("failure not retryable", logger.Fields(
				logger.FieldAttempt, attempt,
				logger.FieldError, err.Error(),
			))
			return zero, err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := Delay(attempt, cfg)
		log.Warn("attempt failed, backing off", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldMaxAttempts, cfg.MaxAttempts,
			logger.FieldError, err.Error(),
			logger.FieldDelay, delay.Milliseconds(),
		))
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	log.Error("attempts exhausted", logger.Fields(
		logger.FieldMaxAttempts, cfg.MaxAttempts,
		logger.FieldError, lastErr.Error(),
	))
	return zero, lastErr
}

// DoFunc executes a function that returns only an error.
func DoFunc(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Once builds an engine from overrides and executes fn a single time through
// it. Zero fields in overrides take defaults.
func Once[T any](ctx context.Context, overrides Config, fn func(context.Context) (T, error)) (T, error) {
	return Do(ctx, overrides, fn)
}

// Delay computes the backoff before attempt+1. Exported so callers and tests
// can inspect the schedule.
func Delay(attempt int, cfg Config) time.Duration {
	cfg.applyDefaults()

	backoff := float64(cfg.BaseDelay) * math.Pow(cfg.ExponentialBase, float64(attempt-1))
	if backoff > float64(cfg.MaxDelay) {
		backoff = float64(cfg.MaxDelay)
	}

	d := time.Duration(backoff)
	if cfg.JitterMax > 0 {
		d += time.Duration(rand.Int63n(int64(cfg.JitterMax)))
	}
	return d
}
