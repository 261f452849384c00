// Package logger provides structured logging for guardrail built on zerolog.
//
// Every guard in guardrail emits structured events through this package:
// circuit state transitions, retry attempts with their computed backoff,
// timeout expirations, and rate-limit rejections. Consumers either pass a
// *Logger explicitly or rely on the package-level default.
//
//	log := logger.NewDefault("payments")
//	log.WithComponent("breaker").Info("state change", logger.Fields(
//	    logger.FieldCircuit, "orders-db",
//	    logger.FieldState, "open",
//	))
package logger
