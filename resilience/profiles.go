package resilience

import (
	"time"

	"github.com/kbukum/guardrail/breaker"
	"github.com/kbukum/guardrail/retry"
)

// DatabaseProfile guards database calls: short timeout, quick retries, and a
// breaker that recovers fast. Queries either succeed quickly or fail quickly.
func DatabaseProfile() Config {
	return Config{
		Timeout: 10 * time.Second,
		Breaker: &breaker.Config{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		},
		Retry: &retry.Config{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
		},
	}
}

// ExternalAPIProfile guards third-party HTTP calls: a moderate timeout and a
// breaker that opens after few failures, since external outages tend to last.
func ExternalAPIProfile() Config {
	return Config{
		Timeout: 30 * time.Second,
		Breaker: &breaker.Config{
			FailureThreshold: 3,
			RecoveryTimeout:  60 * time.Second,
		},
		Retry: &retry.Config{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
	}
}

// AICallProfile guards model inference calls: a long timeout for slow
// generations, few retries because attempts are expensive, and a breaker
// tuned to tolerate a higher baseline failure rate.
func AICallProfile() Config {
	return Config{
		Timeout: 60 * time.Second,
		Breaker: &breaker.Config{
			FailureThreshold:     3,
			FailureRateThreshold: 0.3,
			RecoveryTimeout:      120 * time.Second,
		},
		Retry: &retry.Config{
			MaxAttempts: 2,
			BaseDelay:   2 * time.Second,
		},
	}
}
