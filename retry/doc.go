// Package retry re-executes failed operations with exponential backoff and
// jitter.
//
// Failures are classified before any retry happens: only errors whose code or
// HTTP status appears in the configured retryable set are attempted again,
// everything else returns immediately. The delay between attempts grows
// exponentially, is capped, and carries uniform random jitter to avoid
// synchronized retry storms:
//
//	delay(n) = min(BaseDelay * ExponentialBase^(n-1), MaxDelay) + uniform(0, JitterMax)
//
// Callers are responsible for the idempotency of retried operations; this
// package makes no assumptions about side effects.
package retry
