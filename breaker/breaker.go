package breaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/timeout"
)

// OpenError is returned when a call is rejected by an open circuit. The
// wrapped operation is never invoked.
type OpenError struct {
	// Circuit is the dependency name.
	Circuit string
	// State is the breaker state at rejection time (always StateOpen).
	State State
	// LastFailure is when the dependency last failed.
	LastFailure time.Time
}

// Error returns the string representation of the error.
func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit %q is open (last failure %s)", e.Circuit, e.LastFailure.Format(time.RFC3339))
}

// Config configures a circuit breaker.
type Config struct {
	// Name identifies the protected dependency.
	Name string
	// FailureThreshold is the number of half-open successes needed to close.
	FailureThreshold int
	// RecoveryTimeout is how long an open breaker waits before probing.
	RecoveryTimeout time.Duration
	// RequestTimeout bounds each call through the breaker.
	RequestTimeout time.Duration
	// MonitoringPeriod is the span of the rolling outcome window.
	MonitoringPeriod time.Duration
	// MinimumThroughput is the sample count required before the failure
	// rate can open the breaker.
	MinimumThroughput int
	// FailureRateThreshold opens the breaker when reached (0..1].
	FailureRateThreshold float64
	// OnStateChange is called after every transition.
	OnStateChange func(name string, from, to State)
	// Logger receives structured transition events. Nil uses the default.
	Logger *logger.Logger
}

// DefaultConfig returns the default breaker configuration for name.
func DefaultConfig(name string) Config {
	return Config{
		Name:                 name,
		FailureThreshold:     5,
		RecoveryTimeout:      60 * time.Second,
		RequestTimeout:       30 * time.Second,
		MonitoringPeriod:     60 * time.Second,
		MinimumThroughput:    10,
		FailureRateThreshold: 0.5,
	}
}

func (c *Config) applyDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 60 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MonitoringPeriod <= 0 {
		c.MonitoringPeriod = 60 * time.Second
	}
	if c.MinimumThroughput <= 0 {
		c.MinimumThroughput = 10
	}
	if c.FailureRateThreshold <= 0 || c.FailureRateThreshold > 1 {
		c.FailureRateThreshold = 0.5
	}
}

// Breaker guards calls to a single named dependency.
type Breaker struct {
	cfg Config
	log *logger.Logger

	mu                sync.Mutex
	state             State
	window            *window
	halfOpenSuccesses int

	totalRequests  int64
	totalSuccesses int64
	totalFailures  int64
	totalRejected  int64

	lastFailureTime time.Time
	lastSuccessTime time.Time
	lastStateChange time.Time
}

// New creates a circuit breaker.
func New(cfg Config) *Breaker {
	cfg.applyDefaults()
	return &Breaker{
		cfg:             cfg,
		log:             logger.OrDefault(cfg.Logger).WithComponent("breaker"),
		state:           StateClosed,
		window:          newWindow(cfg.MonitoringPeriod),
		lastStateChange: time.Now(),
	}
}

// Name returns the dependency name this breaker guards.
func (b *Breaker) Name() string { return b.cfg.Name }

// Execute runs fn through breaker b, bounded by the configured request
// timeout. An open breaker rejects with *OpenError without invoking fn.
func Execute[T any](ctx context.Context, b *Breaker, fn timeout.Operation[T]) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}

	val, err := timeout.WithTimeout(ctx, b.cfg.RequestTimeout, b.cfg.Name, fn)
	b.record(err == nil)
	return val, err
}

// Do runs an errors-only operation through the breaker.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	_, err := Execute(ctx, b, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset force-returns the breaker to closed and zeroes all counters and the
// rolling window. The name is kept.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.toState(StateClosed)
	b.window.reset()
	b.halfOpenSuccesses = 0
	b.totalRequests = 0
	b.totalSuccesses = 0
	b.totalFailures = 0
	b.totalRejected = 0
	b.lastFailureTime = time.Time{}
	b.lastSuccessTime = time.Time{}
}

// allow decides whether a call may proceed, handling the open→half-open
// recovery transition.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.lastStateChange) >= b.cfg.RecoveryTimeout {
			b.toState(StateHalfOpen)
		} else {
			b.totalRejected++
			return &OpenError{
				Circuit:     b.cfg.Name,
				State:       StateOpen,
				LastFailure: b.lastFailureTime,
			}
		}
	}

	b.totalRequests++
	return nil
}

// record applies a call outcome to the state machine.
func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if ok {
		b.totalSuccesses++
		b.lastSuccessTime = now
	} else {
		b.totalFailures++
		b.lastFailureTime = now
	}
	b.window.record(now, ok)

	switch b.state {
	case StateClosed:
		if !ok &&
			b.window.total(now) >= b.cfg.MinimumThroughput &&
			b.window.failureRate(now) >= b.cfg.FailureRateThreshold {
			b.toState(StateOpen)
		}
	case StateHalfOpen:
		if !ok {
			b.toState(StateOpen)
			return
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.cfg.FailureThreshold {
			b.toState(StateClosed)
			b.window.reset()
		}
	}
}

// toState transitions the breaker. Callers hold the mutex.
func (b *Breaker) toState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.lastStateChange = time.Now()
	b.halfOpenSuccesses = 0

	b.log.Info("state change", logger.Fields(
		logger.FieldCircuit, b.cfg.Name,
		logger.FieldState, to.String(),
		"from", from.String(),
		logger.FieldFailureRate, b.window.failureRate(b.lastStateChange),
	))
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}
