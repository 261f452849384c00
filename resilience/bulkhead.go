package resilience

import (
	"context"
	"errors"
	"time"
)

// Bulkhead errors.
var (
	// ErrBulkheadFull is returned when no slot is free and no wait is
	// configured.
	ErrBulkheadFull = errors.New("bulkhead is full")
	// ErrBulkheadTimeout is returned when the wait for a slot timed out.
	ErrBulkheadTimeout = errors.New("bulkhead wait timeout")
)

// BulkheadConfig configures a concurrency cap.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of in-flight calls.
	MaxConcurrent int
	// MaxWait is how long to wait for a slot. 0 means fail immediately.
	MaxWait time.Duration
}

// Bulkhead caps the number of concurrent calls to a dependency so one slow
// dependency cannot absorb every worker.
type Bulkhead struct {
	sem     chan struct{}
	maxWait time.Duration
}

// NewBulkhead creates a bulkhead from cfg.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{
		sem:     make(chan struct{}, cfg.MaxConcurrent),
		maxWait: cfg.MaxWait,
	}
}

// Acquire claims a slot, waiting up to MaxWait. Returns ErrBulkheadFull when
// no slot is free and no wait is configured, ErrBulkheadTimeout when the
// wait elapsed, or the context error if ctx is done first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	if b.maxWait <= 0 {
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot. Must be called exactly once per successful Acquire.
func (b *Bulkhead) Release() {
	<-b.sem
}

// Run executes fn inside the bulkhead.
func Run[T any](ctx context.Context, b *Bulkhead, fn func(context.Context) (T, error)) (T, error) {
	if err := b.Acquire(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer b.Release()
	return fn(ctx)
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Available returns the number of free slots.
func (b *Bulkhead) Available() int { return cap(b.sem) - len(b.sem) }
