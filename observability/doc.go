// Package observability provides OpenTelemetry tracing and metrics for the
// resilience layers: counters for breaker transitions and rejections, retry
// attempts, rate-limit rejections, and a duration histogram for guarded
// operations.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "db.query")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	ins, err := observability.NewInstruments(observability.Meter("my-service"))
//	ins.RecordTransition(ctx, "postgres", "closed", "open")
//
// Health:
//
//	health := observability.NewServiceHealth("my-service", "1.0.0")
//	health.AddComponent(checker.CheckHealth(ctx))
package observability
