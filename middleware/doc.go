// Package middleware provides Gin middleware for the inbound-request side of
// guardrail: per-key rate limiting, request deadlines, and request ids.
//
// RateLimit guards the request boundary before any handler runs, answering
// excess requests with 429 and the standard X-RateLimit-* headers.
// RequestTimeout bounds the whole handler chain with a deadline and answers
// 408 when it fires; a handler still running at that point keeps going in
// the background with its writes silently dropped.
//
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RequestTimeout(middleware.RequestTimeoutConfig{Timeout: 10 * time.Second}))
//	r.Use(middleware.RateLimit(middleware.PerIPPreset()))
package middleware
