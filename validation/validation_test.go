package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/guardrail/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "postgres")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorDurations(t *testing.T) {
	v := New()
	v.PositiveDuration("window", time.Minute)
	v.NonNegativeDuration("jitter_max", 0)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New()
	v2.PositiveDuration("window", 0)
	v2.NonNegativeDuration("jitter_max", -time.Second)
	if len(v2.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %v", v2.Errors())
	}
}

func TestValidatorFraction(t *testing.T) {
	for _, ok := range []float64{0.01, 0.5, 1} {
		v := New()
		if v.Fraction("failure_rate_threshold", ok); v.HasErrors() {
			t.Errorf("%v should be a valid fraction", ok)
		}
	}
	for _, bad := range []float64{0, -0.5, 1.01} {
		v := New()
		if v.Fraction("failure_rate_threshold", bad); !v.HasErrors() {
			t.Errorf("%v should be rejected", bad)
		}
	}
}

func TestValidatorRangeMinMax(t *testing.T) {
	v := New()
	v.Range("max_attempts", 3, 1, 100)
	v.Min("failure_threshold", 5, 1)
	v.Max("minimum_throughput", 10, 1000)
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New()
	v2.Range("max_attempts", 0, 1, 100)
	v2.Min("failure_threshold", 0, 1)
	v2.Max("minimum_throughput", 5000, 1000)
	if len(v2.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %v", v2.Errors())
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("environment", "staging", []string{"development", "staging", "production"})
	if v.HasErrors() {
		t.Errorf("expected no errors, got %v", v.Errors())
	}

	v2 := New()
	v2.OneOf("environment", "qa", []string{"development", "staging", "production"})
	if !v2.HasErrors() {
		t.Error("expected error for disallowed value")
	}

	// Empty values are left to Required.
	v3 := New()
	v3.OneOf("environment", "", []string{"development"})
	if v3.HasErrors() {
		t.Error("empty value should not fail OneOf")
	}
}

func TestValidatorCollectsAll(t *testing.T) {
	v := New()
	v.Required("name", "")
	v.PositiveDuration("window", 0)

	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected an error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected invalid input code, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "name") || !strings.Contains(appErr.Message, "window") {
		t.Errorf("message should mention both fields, got %s", appErr.Message)
	}
	if appErr.Details["fields"] == nil {
		t.Error("details should carry the field errors")
	}
}

func TestValidateStructTags(t *testing.T) {
	type section struct {
		FailureThreshold     int     `mapstructure:"failure_threshold" validate:"gte=1"`
		FailureRateThreshold float64 `mapstructure:"failure_rate_threshold" validate:"gt=0,lte=1"`
		Environment          string  `mapstructure:"environment" validate:"required,oneof=development staging production"`
	}

	ok := section{FailureThreshold: 5, FailureRateThreshold: 0.5, Environment: "production"}
	if err := Validate(ok); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	bad := section{FailureThreshold: 0, FailureRateThreshold: 1.5}
	err := Validate(bad)
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, isApp := errors.AsAppError(err)
	if !isApp {
		t.Fatalf("expected *AppError, got %T", err)
	}
	for _, field := range []string{"failure_threshold", "failure_rate_threshold", "environment"} {
		if !strings.Contains(appErr.Message, field) {
			t.Errorf("message should mention %s, got %s", field, appErr.Message)
		}
	}
}

func TestValidateNonStruct(t *testing.T) {
	if err := Validate(42); err == nil {
		t.Error("expected an error for a non-struct value")
	}
}
