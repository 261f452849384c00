package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is applied when a caller passes a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Error indicates an operation did not settle before its deadline.
type Error struct {
	// Duration is the deadline that was exceeded.
	Duration time.Duration
	// Label identifies the operation for logs and error messages.
	Label string
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("operation %q timed out after %s", e.Label, e.Duration)
	}
	return fmt.Sprintf("operation timed out after %s", e.Duration)
}

// Timeout reports that this is a timeout condition, following the net.Error
// convention so classifiers can detect it without importing this package.
func (e *Error) Timeout() bool { return true }

// IsTimeout reports whether err is (or wraps) a deadline-exceeded failure.
func IsTimeout(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Operation is a cancellable unit of work guarded by this package.
type Operation[T any] func(context.Context) (T, error)

type settled[T any] struct {
	val T
	err error
}

// WithTimeout runs fn with a deadline. If the timer fires before fn settles,
// the returned error is *Error and fn's eventual result is discarded. If fn
// settles first the timer is cancelled.
//
// fn receives a context that is cancelled once the race is decided, so
// well-behaved operations can stop early. A panicking fn is recovered and
// surfaces as an error rather than crashing the process.
func WithTimeout[T any](ctx context.Context, d time.Duration, label string, fn Operation[T]) (T, error) {
	var zero T
	if d <= 0 {
		d = DefaultTimeout
	}

	opCtx, cancel := context.WithCancel(ctx)

	// Buffered so the goroutine can always complete its send, even after
	// the race has been lost.
	ch := make(chan settled[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- settled[T]{err: fmt.Errorf("operation %q panicked: %v", label, r)}
			}
		}()
		val, err := fn(opCtx)
		ch <- settled[T]{val: val, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case s := <-ch:
		cancel()
		return s.val, s.err
	case <-timer.C:
		cancel()
		return zero, &Error{Duration: d, Label: label}
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}

// Race runs all operations concurrently and returns the first to settle,
// success or failure. If none settle within d the result is *Error. Losing
// operations keep running on a cancelled context and their results are
// dropped.
func Race[T any](ctx context.Context, d time.Duration, label string, fns ...Operation[T]) (T, error) {
	var zero T
	if len(fns) == 0 {
		return zero, fmt.Errorf("race %q: no operations given", label)
	}
	if d <= 0 {
		d = DefaultTimeout
	}

	opCtx, cancel := context.WithCancel(ctx)

	ch := make(chan settled[T], len(fns))
	for _, fn := range fns {
		fn := fn
		go func() {
			defer func() {
				if r := recover(); r != nil {
					ch <- settled[T]{err: fmt.Errorf("operation %q panicked: %v", label, r)}
				}
			}()
			val, err := fn(opCtx)
			ch <- settled[T]{val: val, err: err}
		}()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case s := <-ch:
		cancel()
		return s.val, s.err
	case <-timer.C:
		cancel()
		return zero, &Error{Duration: d, Label: label}
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}
