// Package resilience composes the timeout, retry, and circuit breaker layers
// into a single guarded operation, with an optional bulkhead concurrency cap
// as the outermost layer.
//
// A Manager owns the breaker registry and the shared observability hooks.
// Wrap builds the layered call chain once; the returned function is safe for
// concurrent use:
//
//	m := resilience.NewManager(breaker.DefaultConfig("default"))
//	query := resilience.Wrap(m, "postgres", resilience.DatabaseProfile(),
//		func(ctx context.Context) ([]Row, error) {
//			return db.QueryContext(ctx, sql)
//		})
//
//	rows, err := query(ctx)
//
// Layering is retry around breaker around timeout around the operation, so
// each attempt is individually time-bounded and individually counted by the
// breaker. Failures crossing the boundary are normalized to *errors.AppError
// and panics inside the operation are recovered and returned as errors.
package resilience
