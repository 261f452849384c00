package config

import (
	"time"

	"github.com/kbukum/guardrail/breaker"
	"github.com/kbukum/guardrail/logger"
	"github.com/kbukum/guardrail/ratelimit"
	"github.com/kbukum/guardrail/redis"
	"github.com/kbukum/guardrail/retry"
	"github.com/kbukum/guardrail/validation"
)

// Config is the full guardrail configuration tree loaded from guardrail.yml.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	Timeout       TimeoutSection       `yaml:"timeout" mapstructure:"timeout"`
	Retry         RetrySection         `yaml:"retry" mapstructure:"retry"`
	Breaker       BreakerSection       `yaml:"breaker" mapstructure:"breaker"`
	RateLimit     RateLimitSection     `yaml:"ratelimit" mapstructure:"ratelimit"`
	Observability ObservabilitySection `yaml:"observability" mapstructure:"observability"`
}

// TimeoutSection configures the default operation deadline.
type TimeoutSection struct {
	Default time.Duration `yaml:"default" mapstructure:"default" validate:"omitempty,gt=0"`
}

// RetrySection configures the retry engine defaults.
type RetrySection struct {
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,gte=1,lte=100"`
	BaseDelay       time.Duration `yaml:"base_delay" mapstructure:"base_delay" validate:"omitempty,gt=0"`
	MaxDelay        time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"omitempty,gt=0"`
	ExponentialBase float64       `yaml:"exponential_base" mapstructure:"exponential_base" validate:"omitempty,gt=1"`
	JitterMax       time.Duration `yaml:"jitter_max" mapstructure:"jitter_max" validate:"omitempty,gte=0"`
}

// BreakerSection configures the default circuit breaker thresholds.
type BreakerSection struct {
	FailureThreshold     int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"omitempty,gte=1"`
	RecoveryTimeout      time.Duration `yaml:"recovery_timeout" mapstructure:"recovery_timeout" validate:"omitempty,gt=0"`
	RequestTimeout       time.Duration `yaml:"request_timeout" mapstructure:"request_timeout" validate:"omitempty,gt=0"`
	MonitoringPeriod     time.Duration `yaml:"monitoring_period" mapstructure:"monitoring_period" validate:"omitempty,gt=0"`
	MinimumThroughput    int           `yaml:"minimum_throughput" mapstructure:"minimum_throughput" validate:"omitempty,gte=1"`
	FailureRateThreshold float64       `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold" validate:"omitempty,gt=0,lte=1"`
}

// RateLimitSection configures the fixed-window rate limiter. The redis
// subsection switches from the in-memory store to a shared one when enabled.
type RateLimitSection struct {
	Window      time.Duration `yaml:"window" mapstructure:"window" validate:"omitempty,gt=0"`
	MaxRequests int           `yaml:"max_requests" mapstructure:"max_requests" validate:"omitempty,gte=1"`
	Redis       redis.Config  `yaml:"redis" mapstructure:"redis"`
}

// ObservabilitySection configures OTLP export.
type ObservabilitySection struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()

	if c.Timeout.Default <= 0 {
		c.Timeout.Default = 30 * time.Second
	}

	rd := retry.DefaultConfig()
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = rd.MaxAttempts
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = rd.BaseDelay
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = rd.MaxDelay
	}
	if c.Retry.ExponentialBase <= 0 {
		c.Retry.ExponentialBase = rd.ExponentialBase
	}
	if c.Retry.JitterMax < 0 {
		c.Retry.JitterMax = 0
	}

	bd := breaker.DefaultConfig("")
	if c.Breaker.FailureThreshold <= 0 {
		c.Breaker.FailureThreshold = bd.FailureThreshold
	}
	if c.Breaker.RecoveryTimeout <= 0 {
		c.Breaker.RecoveryTimeout = bd.RecoveryTimeout
	}
	if c.Breaker.RequestTimeout <= 0 {
		c.Breaker.RequestTimeout = bd.RequestTimeout
	}
	if c.Breaker.MonitoringPeriod <= 0 {
		c.Breaker.MonitoringPeriod = bd.MonitoringPeriod
	}
	if c.Breaker.MinimumThroughput <= 0 {
		c.Breaker.MinimumThroughput = bd.MinimumThroughput
	}
	if c.Breaker.FailureRateThreshold <= 0 {
		c.Breaker.FailureRateThreshold = bd.FailureRateThreshold
	}

	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = 15 * time.Minute
	}
	if c.RateLimit.MaxRequests <= 0 {
		c.RateLimit.MaxRequests = 100
	}

	if c.Observability.SampleRate <= 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
		c.Observability.Insecure = true
	}
}

// Validate checks the loaded configuration. Call after ApplyDefaults.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// RetryConfig converts the retry section into a retry.Config.
func (c *Config) RetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:     c.Retry.MaxAttempts,
		BaseDelay:       c.Retry.BaseDelay,
		MaxDelay:        c.Retry.MaxDelay,
		ExponentialBase: c.Retry.ExponentialBase,
		JitterMax:       c.Retry.JitterMax,
	}
}

// BreakerConfig converts the breaker section into a breaker.Config for the
// named dependency.
func (c *Config) BreakerConfig(name string) breaker.Config {
	return breaker.Config{
		Name:                 name,
		FailureThreshold:     c.Breaker.FailureThreshold,
		RecoveryTimeout:      c.Breaker.RecoveryTimeout,
		RequestTimeout:       c.Breaker.RequestTimeout,
		MonitoringPeriod:     c.Breaker.MonitoringPeriod,
		MinimumThroughput:    c.Breaker.MinimumThroughput,
		FailureRateThreshold: c.Breaker.FailureRateThreshold,
	}
}

// RateLimitConfig converts the rate-limit section into a limiter config
// using the given store.
func (c *Config) RateLimitConfig(name string, store ratelimit.Store) ratelimit.Config {
	return ratelimit.Config{
		Name:        name,
		Window:      c.RateLimit.Window,
		MaxRequests: c.RateLimit.MaxRequests,
		Store:       store,
	}
}

// RateLimitStore builds the configured rate-limit store: the shared Redis
// store when the redis subsection is enabled, otherwise an in-memory one
// swept once per window.
func (c *Config) RateLimitStore(log *logger.Logger) (ratelimit.Store, error) {
	if !c.RateLimit.Redis.Enabled {
		return ratelimit.NewMemoryStore(c.RateLimit.Window), nil
	}
	client, err := redis.New(c.RateLimit.Redis, log)
	if err != nil {
		return nil, err
	}
	return ratelimit.NewRedisStore(client.Unwrap(), "guardrail:rl"), nil
}
