package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/kbukum/guardrail/breaker"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.Interval)
	}
}

func TestNewInstruments(t *testing.T) {
	ins, err := NewInstruments(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	ins.RecordTransition(ctx, "db", "closed", "open")
	ins.RecordRejection(ctx, "db")
	ins.RecordAttempt(ctx, "query", 2)
	ins.RecordRateLimited(ctx, "per-ip")
	ins.RecordDuration(ctx, "query", "ok", 120*time.Millisecond)
}

func TestNilInstrumentsAreNoOps(t *testing.T) {
	var ins *Instruments

	ctx := context.Background()
	ins.RecordTransition(ctx, "db", "closed", "open")
	ins.RecordRejection(ctx, "db")
	ins.RecordAttempt(ctx, "query", 1)
	ins.RecordRateLimited(ctx, "per-ip")
	ins.RecordDuration(ctx, "query", "error", time.Second)
}

func TestBreakerHealth(t *testing.T) {
	tests := []struct {
		state string
		want  HealthStatus
	}{
		{breaker.StateClosed.String(), HealthStatusUp},
		{breaker.StateHalfOpen.String(), HealthStatusDegraded},
		{breaker.StateOpen.String(), HealthStatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			h := BreakerHealth(breaker.Metrics{Circuit: "db", State: tt.state})
			if h.Status != tt.want {
				t.Errorf("state %s: expected %s, got %s", tt.state, tt.want, h.Status)
			}
			if h.Name != "db" {
				t.Errorf("expected component name db, got %s", h.Name)
			}
		})
	}
}

func TestRegistryHealth(t *testing.T) {
	reg := breaker.NewRegistry(breaker.DefaultConfig("default"))
	reg.Get("db")
	reg.Get("api")

	sh := RegistryHealth("guardrail", "1.0.0", reg)
	if sh.Status != HealthStatusUp {
		t.Errorf("all breakers closed, expected up, got %s", sh.Status)
	}
	if len(sh.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(sh.Components))
	}
}

func TestServiceHealthDegrades(t *testing.T) {
	sh := NewServiceHealth("guardrail", "1.0.0")
	sh.AddComponent(Health{Name: "a", Status: HealthStatusUp})
	sh.AddComponent(Health{Name: "b", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "c", Status: HealthStatusDown})
	if sh.Status != HealthStatusDown {
		t.Errorf("expected down, got %s", sh.Status)
	}

	sh.AddComponent(Health{Name: "d", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Error("down must not be upgraded by a later degraded component")
	}
}
