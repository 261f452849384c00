package observability

import (
	"context"
	"fmt"

	"github.com/kbukum/guardrail/breaker"
)

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth describes the overall health of a service and its components.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status
// if needed.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// BreakerHealth maps a breaker snapshot to component health: open is down,
// half-open is degraded, closed is up.
func BreakerHealth(m breaker.Metrics) Health {
	h := Health{
		Name:   m.Circuit,
		Status: HealthStatusUp,
		Details: map[string]string{
			"state":        m.State,
			"failure_rate": fmt.Sprintf("%.2f", m.FailureRate),
			"rejected":     fmt.Sprintf("%d", m.TotalRejected),
		},
	}

	switch m.State {
	case breaker.StateOpen.String():
		h.Status = HealthStatusDown
		h.Message = "circuit open, calls are being rejected"
	case breaker.StateHalfOpen.String():
		h.Status = HealthStatusDegraded
		h.Message = "circuit probing recovery"
	}
	return h
}

// RegistryHealth reports the health of every breaker in the registry.
func RegistryHealth(service, version string, reg *breaker.Registry) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, m := range reg.AggregateMetrics() {
		sh.AddComponent(BreakerHealth(m))
	}
	return sh
}
