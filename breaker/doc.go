// Package breaker implements a per-dependency circuit breaker driven by a
// rolling failure-rate window.
//
// A breaker is a three-state machine:
//
//   - Closed: calls pass through. Each outcome lands in a time-bounded sample
//     window; once the window holds at least MinimumThroughput samples and the
//     failure rate reaches FailureRateThreshold, the breaker opens.
//   - Open: calls are rejected immediately with *OpenError. After
//     RecoveryTimeout the next call moves the breaker to half-open and is
//     allowed through as a probe.
//   - Half-open: any failure reopens the breaker; FailureThreshold consecutive
//     successes close it and clear the window.
//
// Every call is additionally bounded by RequestTimeout via the timeout
// package. A Registry lazily creates one breaker per dependency name and
// aggregates their metrics.
//
// State bookkeeping is guarded by a per-breaker mutex, but the
// check-state/run/record-outcome sequence is deliberately not atomic across
// the in-flight operation. Two concurrent calls may interleave around the
// operation, so the failure-rate window is an approximation under high
// concurrency rather than a linearizable count.
package breaker
