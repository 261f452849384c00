package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/guardrail/breaker"
	"github.com/kbukum/guardrail/errors"
	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/resilience"
	"github.com/kbukum/guardrail/retry"
)

func newTestClient(t *testing.T, baseURL string, guard *resilience.Config) *Client {
	t.Helper()
	m := resilience.NewManager(breaker.DefaultConfig("default"), resilience.WithLogger(logger.Nop()))
	client, err := New(m, Config{Name: "test-api", BaseURL: baseURL, Guard: guard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func unguarded() *resilience.Config {
	return &resilience.Config{}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing name")
	}

	cfg = Config{Name: "api"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.Guard == nil || cfg.Guard.Breaker == nil {
		t.Error("expected the external API profile by default")
	}
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("verbose") != "true" {
			t.Errorf("missing query parameter, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Error("default header not applied")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"ada"}`))
	}))
	defer srv.Close()

	m := resilience.NewManager(breaker.DefaultConfig("default"), resilience.WithLogger(logger.Nop()))
	client, err := New(m, Config{
		Name:    "users-api",
		BaseURL: srv.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
		Guard:   unguarded(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/users/1",
		Query:  map[string]string{"verbose": "true"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Fatalf("expected success, got %d", resp.StatusCode)
	}

	var user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := resp.DecodeJSON(&user); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if user.Name != "ada" {
		t.Errorf("unexpected body: %+v", user)
	}
}

func TestPostEncodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, unguarded())
	resp, err := client.Post(context.Background(), "/things", map[string]string{"kind": "widget"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &resilience.Config{
		Retry: &retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, JitterMax: time.Millisecond},
	})

	resp, err := client.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &resilience.Config{
		Retry: &retry.Config{MaxAttempts: 4, BaseDelay: time.Millisecond},
	})

	_, err := client.Get(context.Background(), "/")
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400 classification, got %d", appErr.HTTPStatus)
	}
	if hits != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", hits)
	}
}

func TestDoClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, unguarded())
	_, err := client.Get(context.Background(), "/")
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeRateLimited {
		t.Errorf("expected rate-limited code, got %s", appErr.Code)
	}
}

func TestDoConnectionError(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", unguarded())

	_, err := client.Get(context.Background(), "/")
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeConnectionFailed {
		t.Errorf("expected connection failure, got %s", appErr.Code)
	}
}

func TestDoOpensBreakerOnRepeatedFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := resilience.NewManager(breaker.DefaultConfig("default"), resilience.WithLogger(logger.Nop()))
	client, err := New(m, Config{
		Name:    "degraded-api",
		BaseURL: srv.URL,
		Guard: &resilience.Config{
			Breaker: &breaker.Config{
				FailureThreshold:     2,
				FailureRateThreshold: 0.5,
				MinimumThroughput:    2,
				RecoveryTimeout:      time.Hour,
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Get(ctx, "/"); err == nil {
			t.Fatal("expected failure")
		}
	}
	before := atomic.LoadInt32(&hits)

	if _, err := client.Get(ctx, "/"); err == nil {
		t.Fatal("expected an open-circuit rejection")
	}
	if atomic.LoadInt32(&hits) != before {
		t.Error("rejected call must not reach the upstream")
	}
	if got := m.Breakers().Get("degraded-api").State(); got != breaker.StateOpen {
		t.Errorf("expected the breaker to be open, got %v", got)
	}
}
