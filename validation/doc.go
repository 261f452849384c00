// Package validation checks configuration structs before they configure a
// guard. It supports struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type BreakerSection struct {
//	    FailureThreshold     int     `mapstructure:"failure_threshold" validate:"gte=1"`
//	    FailureRateThreshold float64 `mapstructure:"failure_rate_threshold" validate:"gt=0,lte=1"`
//	}
//	err := validation.Validate(section)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.PositiveDuration("window", cfg.Window)
//	err := v.Validate()
package validation
