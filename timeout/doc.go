// Package timeout races operations against deadlines.
//
// WithTimeout runs a single operation with a first-settle-wins deadline:
// whichever finishes first — the operation or the timer — decides the result,
// and the loser is discarded. Race extends this to N concurrent operations.
//
// Cancellation is cooperative. When the deadline fires, the context passed to
// the operation is cancelled, but the operation is never forcibly aborted; if
// it ignores the context it keeps running in the background and its eventual
// result is dropped.
//
// Manager tracks many independent named deadlines for callers coordinating
// several concurrent watchdogs (for example, per-session timers).
package timeout
