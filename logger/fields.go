package logger

// Standard field key constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldDuration  = "duration_ms"

	// Circuit breaker fields.
	FieldCircuit     = "circuit"
	FieldState       = "state"
	FieldFailureRate = "failure_rate"

	// Retry fields.
	FieldAttempt     = "attempt"
	FieldMaxAttempts = "max_attempts"
	FieldDelay       = "delay_ms"

	// Timeout fields.
	FieldLabel   = "label"
	FieldTimeout = "timeout_ms"

	// Rate limit fields.
	FieldKey       = "key"
	FieldLimit     = "limit"
	FieldRemaining = "remaining"
	FieldResetAt   = "reset_at"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("rejected", logger.Fields(logger.FieldKey, "10.0.0.1", logger.FieldLimit, 100))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}
