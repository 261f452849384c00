package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments holds the metric instruments emitted by the resilience layers.
// A nil *Instruments is valid; every Record method is then a no-op, so
// callers never have to guard recording sites.
type Instruments struct {
	breakerTransitions metric.Int64Counter
	breakerRejected    metric.Int64Counter
	retryAttempts      metric.Int64Counter
	ratelimitRejected  metric.Int64Counter
	operationDuration  metric.Float64Histogram
}

// NewInstruments creates the resilience instruments on the given meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	breakerTransitions, err := meter.Int64Counter("breaker.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breaker.transitions counter: %w", err)
	}

	breakerRejected, err := meter.Int64Counter("breaker.rejected",
		metric.WithDescription("Calls rejected by an open circuit breaker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating breaker.rejected counter: %w", err)
	}

	retryAttempts, err := meter.Int64Counter("retry.attempts",
		metric.WithDescription("Operation attempts made by the retry engine"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry.attempts counter: %w", err)
	}

	ratelimitRejected, err := meter.Int64Counter("ratelimit.rejected",
		metric.WithDescription("Requests rejected by the rate limiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ratelimit.rejected counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("operation.duration",
		metric.WithDescription("Duration of guarded operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation.duration histogram: %w", err)
	}

	return &Instruments{
		breakerTransitions: breakerTransitions,
		breakerRejected:    breakerRejected,
		retryAttempts:      retryAttempts,
		ratelimitRejected:  ratelimitRejected,
		operationDuration:  operationDuration,
	}, nil
}

// RecordTransition records a breaker state transition.
func (i *Instruments) RecordTransition(ctx context.Context, circuit, from, to string) {
	if i == nil {
		return
	}
	i.breakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCircuitName, circuit),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordRejection records a call rejected by an open breaker.
func (i *Instruments) RecordRejection(ctx context.Context, circuit string) {
	if i == nil {
		return
	}
	i.breakerRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCircuitName, circuit),
	))
}

// RecordAttempt records one attempt of a retried operation.
func (i *Instruments) RecordAttempt(ctx context.Context, operation string, attempt int) {
	if i == nil {
		return
	}
	i.retryAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperationName, operation),
		attribute.Int(AttrAttempt, attempt),
	))
}

// RecordRateLimited records a request rejected by the rate limiter.
func (i *Instruments) RecordRateLimited(ctx context.Context, limiter string) {
	if i == nil {
		return
	}
	i.ratelimitRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiter),
	))
}

// RecordDuration records the observed duration of a guarded operation.
func (i *Instruments) RecordDuration(ctx context.Context, operation, status string, d time.Duration) {
	if i == nil {
		return
	}
	i.operationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrOperationName, operation),
		attribute.String(AttrStatus, status),
	))
}
