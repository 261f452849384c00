package resilience

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/kbukum/guardrail/breaker"
	"github.com/kbukum/guardrail/errors"
	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/observability"
	"github.com/kbukum/guardrail/retry"
	"github.com/kbukum/guardrail/timeout"
	"github.com/kbukum/guardrail/version"
)

// Config selects which layers guard a wrapped operation. Nil layers are
// skipped; a zero Timeout with a nil Breaker leaves the operation unbounded.
type Config struct {
	// Timeout bounds each individual attempt. When a Breaker is configured
	// it overrides the breaker's RequestTimeout.
	Timeout time.Duration
	// Breaker, when set, routes attempts through a named circuit breaker.
	Breaker *breaker.Config
	// Retry, when set, re-invokes the guarded attempt on retryable failures.
	Retry *retry.Config
	// Bulkhead, when set, caps concurrent calls as the outermost layer.
	Bulkhead *BulkheadConfig
}

// Manager owns the breaker registry, bulkheads, and observability hooks
// shared by wrapped operations. Construct one per application and inject it;
// there is no package-level instance.
type Manager struct {
	registry *breaker.Registry
	log      *logger.Logger
	ins      *observability.Instruments

	mu        sync.Mutex
	bulkheads map[string]*Bulkhead
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its layers.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithInstruments enables metric recording for wrapped operations.
func WithInstruments(ins *observability.Instruments) Option {
	return func(m *Manager) { m.ins = ins }
}

// NewManager creates a Manager. defaultBreaker seeds the registry's
// configuration for breakers requested without an explicit Config.Breaker.
func NewManager(defaultBreaker breaker.Config, opts ...Option) *Manager {
	m := &Manager{
		bulkheads: make(map[string]*Bulkhead),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logger.OrDefault(m.log).WithComponent("resilience")

	if defaultBreaker.Logger == nil {
		defaultBreaker.Logger = m.log
	}
	m.registry = breaker.NewRegistry(defaultBreaker)
	return m
}

// Breakers exposes the underlying breaker registry.
func (m *Manager) Breakers() *breaker.Registry { return m.registry }

// AggregateMetrics returns a snapshot of every breaker in the registry.
func (m *Manager) AggregateMetrics() map[string]breaker.Metrics {
	return m.registry.AggregateMetrics()
}

// ResetAll force-closes every breaker and clears its counters.
func (m *Manager) ResetAll() {
	m.registry.ResetAll()
}

// Health reports the health of every breaker as service component health.
// An empty ver falls back to the build version.
func (m *Manager) Health(service, ver string) *observability.ServiceHealth {
	if ver == "" {
		ver = version.Short()
	}
	return observability.RegistryHealth(service, ver, m.registry)
}

// bulkhead returns the named bulkhead, creating it on first use.
func (m *Manager) bulkhead(name string, cfg BulkheadConfig) *Bulkhead {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bulkheads[name]; ok {
		return b
	}
	b := NewBulkhead(cfg)
	m.bulkheads[name] = b
	return b
}

// Wrap builds a guarded version of fn layered per cfg: retry around breaker
// around timeout around fn, with the bulkhead outermost when configured.
// Each retry attempt is individually time-bounded and individually recorded
// by the breaker. The returned function recovers panics from fn, normalizes
// every failure to *errors.AppError, and is safe for concurrent use.
func Wrap[T any](m *Manager, name string, cfg Config, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	op := recovered(name, fn)

	// One attempt: breaker (which applies the per-attempt timeout) or a
	// bare timeout when no breaker is configured.
	var attempt func(context.Context) (T, error)
	switch {
	case cfg.Breaker != nil:
		bcfg := *cfg.Breaker
		if bcfg.Name == "" {
			bcfg.Name = name
		}
		if cfg.Timeout > 0 {
			bcfg.RequestTimeout = cfg.Timeout
		}
		if bcfg.Logger == nil {
			bcfg.Logger = m.log
		}
		bcfg.OnStateChange = m.observeTransitions(cfg.Breaker.OnStateChange)
		b := m.registry.GetWithConfig(bcfg.Name, bcfg)
		attempt = func(ctx context.Context) (T, error) {
			return breaker.Execute(ctx, b, timeout.Operation[T](op))
		}
	case cfg.Timeout > 0:
		d := cfg.Timeout
		attempt = func(ctx context.Context) (T, error) {
			return timeout.WithTimeout(ctx, d, name, op)
		}
	default:
		attempt = op
	}

	guarded := attempt
	if cfg.Retry != nil {
		rcfg := *cfg.Retry
		if rcfg.Logger == nil {
			rcfg.Logger = m.log
		}
		rcfg.OnRetry = m.observeRetries(name, cfg.Retry.OnRetry)
		guarded = func(ctx context.Context) (T, error) {
			return retry.Do(ctx, rcfg, attempt)
		}
	}

	if cfg.Bulkhead != nil {
		bh := m.bulkhead(name, *cfg.Bulkhead)
		inner := guarded
		guarded = func(ctx context.Context) (T, error) {
			return Run(ctx, bh, inner)
		}
	}

	return func(ctx context.Context) (T, error) {
		ctx, span := observability.StartSpan(ctx, name)
		defer span.End()
		start := time.Now()

		result, err := guarded(ctx)

		status := "ok"
		if err != nil {
			status = "error"
			observability.SetSpanError(ctx, err)

			var open *breaker.OpenError
			if stderrors.As(err, &open) {
				m.ins.RecordRejection(ctx, open.Circuit)
			}
		}
		m.ins.RecordDuration(ctx, name, status, time.Since(start))

		if err != nil {
			var zero T
			return zero, errors.Normalize(err)
		}
		return result, nil
	}
}

// Execute wraps and immediately invokes fn. Prefer Wrap when the same
// operation is called repeatedly.
func Execute[T any](ctx context.Context, m *Manager, name string, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	return Wrap(m, name, cfg, fn)(ctx)
}

// observeTransitions chains metric recording onto a user transition hook.
func (m *Manager) observeTransitions(next func(name string, from, to breaker.State)) func(name string, from, to breaker.State) {
	return func(name string, from, to breaker.State) {
		m.ins.RecordTransition(context.Background(), name, from.String(), to.String())
		if next != nil {
			next(name, from, to)
		}
	}
}

// observeRetries chains metric recording onto a user retry hook. The hook
// fires before each backoff sleep, so the final attempt is not counted here;
// the duration histogram covers the call as a whole.
func (m *Manager) observeRetries(name string, next func(attempt int, err error, delay time.Duration)) func(attempt int, err error, delay time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		m.ins.RecordAttempt(context.Background(), name, attempt)
		if next != nil {
			next(attempt, err, delay)
		}
	}
}

// recovered converts a panic inside fn into an error so a failing dependency
// cannot take down the caller.
func recovered[T any](name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (result T, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = errors.Internal("panic in guarded operation").
					WithDetail("operation", name).
					WithDetail("panic", p)
			}
		}()
		return fn(ctx)
	}
}
