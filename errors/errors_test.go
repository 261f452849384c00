package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := New(ErrCodeTimeout, "too slow", http.StatusRequestTimeout)
	if err.Error() != "TIMEOUT: too slow" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	withCause := err.WithCause(stderrors.New("tcp reset"))
	want := "TIMEOUT: too slow (cause: tcp reset)"
	if withCause.Error() != want {
		t.Errorf("expected %q, got %q", want, withCause.Error())
	}
}

func TestRetryableDetection(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeServiceUnavailable, true},
		{ErrCodeTimeout, true},
		{ErrCodeRateLimited, true},
		{ErrCodeCircuitOpen, false},
		{ErrCodeInternal, false},
		{ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := IsRetryableCode(tt.code); got != tt.retryable {
				t.Errorf("IsRetryableCode(%s) = %v, want %v", tt.code, got, tt.retryable)
			}
		})
	}
}

func TestAsAppError(t *testing.T) {
	inner := Timeout("query")
	wrapped := fmt.Errorf("handler: %w", inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected wrapped AppError to be found")
	}
	if appErr.Code != ErrCodeTimeout {
		t.Errorf("expected TIMEOUT, got %s", appErr.Code)
	}

	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("plain error should not convert")
	}
}

func TestNormalize(t *testing.T) {
	if Normalize(nil) != nil {
		t.Error("nil should normalize to nil")
	}

	appErr := RateLimited()
	if Normalize(appErr) != appErr {
		t.Error("AppError should pass through unchanged")
	}

	plain := stderrors.New("boom")
	norm := Normalize(plain)
	if norm.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", norm.Code)
	}
	if norm.Message != "boom" {
		t.Errorf("original message should be preserved, got %q", norm.Message)
	}
	if !stderrors.Is(norm, plain) {
		t.Error("normalized error should wrap the original")
	}
}

func TestToResponse(t *testing.T) {
	err := CircuitOpen("orders-db")
	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeCircuitOpen {
		t.Errorf("expected CIRCUIT_OPEN, got %s", resp.Error.Code)
	}
	if resp.Error.Retryable {
		t.Error("circuit open should not be marked retryable")
	}
	if resp.Error.Details["circuit"] != "orders-db" {
		t.Errorf("expected circuit detail, got %v", resp.Error.Details)
	}
}
