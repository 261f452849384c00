// Package errors provides unified error handling for guardrail.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807.
//
// Guard packages (breaker, timeout, retry, ratelimit) define their own typed
// errors and convert them to *AppError at the composer and HTTP boundaries,
// so callers always see a stable code/category instead of raw internals.
package errors
