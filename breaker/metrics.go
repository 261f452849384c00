package breaker

import "time"

// Metrics is a point-in-time snapshot of a breaker's counters and state.
type Metrics struct {
	Circuit         string    `json:"circuit"`
	State           string    `json:"state"`
	TotalRequests   int64     `json:"total_requests"`
	TotalSuccesses  int64     `json:"total_successes"`
	TotalFailures   int64     `json:"total_failures"`
	TotalRejected   int64     `json:"total_rejected"`
	FailureRate     float64   `json:"failure_rate"`
	LastFailureTime time.Time `json:"last_failure_time"`
	LastSuccessTime time.Time `json:"last_success_time"`
	LastStateChange time.Time `json:"last_state_change"`
}

// Metrics returns a snapshot of cumulative totals, current state, and the
// failure rate over the trailing monitoring period.
func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Metrics{
		Circuit:         b.cfg.Name,
		State:           b.state.String(),
		TotalRequests:   b.totalRequests,
		TotalSuccesses:  b.totalSuccesses,
		TotalFailures:   b.totalFailures,
		TotalRejected:   b.totalRejected,
		FailureRate:     b.window.failureRate(time.Now()),
		LastFailureTime: b.lastFailureTime,
		LastSuccessTime: b.lastSuccessTime,
		LastStateChange: b.lastStateChange,
	}
}
