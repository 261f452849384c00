package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/ratelimit"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := Config{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("guard sections get defaults", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()

		if cfg.Timeout.Default != 30*time.Second {
			t.Errorf("expected 30s default timeout, got %v", cfg.Timeout.Default)
		}
		if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay != time.Second {
			t.Errorf("unexpected retry defaults: %+v", cfg.Retry)
		}
		if cfg.Breaker.FailureThreshold != 5 || cfg.Breaker.FailureRateThreshold != 0.5 {
			t.Errorf("unexpected breaker defaults: %+v", cfg.Breaker)
		}
		if cfg.RateLimit.Window != 15*time.Minute || cfg.RateLimit.MaxRequests != 100 {
			t.Errorf("unexpected rate-limit defaults: %+v", cfg.RateLimit)
		}
		if cfg.Observability.SampleRate != 1.0 {
			t.Errorf("unexpected observability defaults: %+v", cfg.Observability)
		}
	})

	t.Run("set values survive", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.Breaker.FailureThreshold = 2
		cfg.Retry.BaseDelay = 250 * time.Millisecond
		cfg.ApplyDefaults()

		if cfg.Breaker.FailureThreshold != 2 {
			t.Error("explicit failure threshold overwritten")
		}
		if cfg.Retry.BaseDelay != 250*time.Millisecond {
			t.Error("explicit base delay overwritten")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults validate", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		var cfg Config
		cfg.ApplyDefaults()
		cfg.Name = ""
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "name") {
			t.Errorf("expected name error, got %v", err)
		}
	})

	t.Run("bad environment", func(t *testing.T) {
		cfg := Config{Name: "svc", Environment: "qa"}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown environment")
		}
	})

	t.Run("failure rate out of range", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		cfg.Breaker.FailureRateThreshold = 1.5
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "failure_rate_threshold") {
			t.Errorf("expected failure_rate_threshold error, got %v", err)
		}
	})
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "guardrail.yml")

	yamlContent := `
name: payments
environment: staging
retry:
  max_attempts: 5
  base_delay: 250ms
breaker:
  failure_threshold: 3
  recovery_timeout: 45s
ratelimit:
  window: 1m
  max_requests: 20
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Config
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "payments" || cfg.Environment != "staging" {
		t.Errorf("unexpected base fields: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("unexpected retry section: %+v", cfg.Retry)
	}
	if cfg.Breaker.FailureThreshold != 3 || cfg.Breaker.RecoveryTimeout != 45*time.Second {
		t.Errorf("unexpected breaker section: %+v", cfg.Breaker)
	}
	if cfg.RateLimit.Window != time.Minute || cfg.RateLimit.MaxRequests != 20 {
		t.Errorf("unexpected ratelimit section: %+v", cfg.RateLimit)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "guardrail.yml")

	yamlContent := `
name: payments
breaker:
  failure_threshold: 5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("BREAKER_FAILURE_THRESHOLD", "2")
	t.Setenv("RETRY_MAX_ATTEMPTS", "7")

	var cfg Config
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Breaker.FailureThreshold != 2 {
		t.Errorf("env should override file, got %d", cfg.Breaker.FailureThreshold)
	}
	if cfg.Retry.MaxAttempts != 7 {
		t.Errorf("env should set unset fields, got %d", cfg.Retry.MaxAttempts)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("RATELIMIT_MAX_REQUESTS=42\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	var cfg Config
	if err := Load(&cfg, WithEnvFile(envPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RateLimit.MaxRequests != 42 {
		t.Errorf("expected .env value 42, got %d", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg Config
	// A missing config file is not an error; defaults and env still apply.
	if err := Load(&cfg, WithConfigFile("/nonexistent/guardrail.yml")); err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestFirstExisting(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config/guardrail.yml": true}}
	if got := firstExisting(fs, configSearchPaths); got != "./config/guardrail.yml" {
		t.Errorf("expected ./config/guardrail.yml, got %q", got)
	}
	if got := firstExisting(&mockFS{}, configSearchPaths); got != "" {
		t.Errorf("expected no match, got %q", got)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("BREAKER_FAILURE_THRESHOLD")

	want := map[string]bool{
		"breaker.failure_threshold": false,
		"breaker.failure.threshold": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}

	if got := envKeyVariants("PATH"); len(got) != 1 || got[0] != "path" {
		t.Errorf("single-part keys should map to themselves, got %v", got)
	}
}

func TestRateLimitStore(t *testing.T) {
	t.Run("memory by default", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()

		store, err := cfg.RateLimitStore(logger.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*ratelimit.MemoryStore); !ok {
			t.Errorf("expected a memory store, got %T", store)
		}
	})

	t.Run("redis when enabled", func(t *testing.T) {
		mr := miniredis.RunT(t)

		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		cfg.RateLimit.Redis.Enabled = true
		cfg.RateLimit.Redis.Addr = mr.Addr()

		store, err := cfg.RateLimitStore(logger.Nop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*ratelimit.RedisStore); !ok {
			t.Errorf("expected a redis store, got %T", store)
		}
	})

	t.Run("enabled without addr fails", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		cfg.RateLimit.Redis.Enabled = true

		if _, err := cfg.RateLimitStore(logger.Nop()); err == nil {
			t.Error("expected an error for missing addr")
		}
	})
}

func TestConverters(t *testing.T) {
	cfg := Config{Name: "svc"}
	cfg.ApplyDefaults()

	rc := cfg.RetryConfig()
	if rc.MaxAttempts != cfg.Retry.MaxAttempts || rc.BaseDelay != cfg.Retry.BaseDelay {
		t.Errorf("retry conversion mismatch: %+v", rc)
	}

	bc := cfg.BreakerConfig("postgres")
	if bc.Name != "postgres" || bc.FailureThreshold != cfg.Breaker.FailureThreshold {
		t.Errorf("breaker conversion mismatch: %+v", bc)
	}

	lc := cfg.RateLimitConfig("per-ip", nil)
	if lc.Name != "per-ip" || lc.Window != cfg.RateLimit.Window || lc.MaxRequests != cfg.RateLimit.MaxRequests {
		t.Errorf("rate-limit conversion mismatch: %+v", lc)
	}
}
