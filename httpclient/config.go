package httpclient

import (
	"time"

	"github.com/kbukum/guardrail/resilience"
	"github.com/kbukum/guardrail/validation"
)

const defaultTimeout = 30 * time.Second

// Config configures the guarded HTTP client.
type Config struct {
	// Name identifies the upstream; it names the breaker and bulkhead.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-attempt deadline. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Guard selects the resilience layers. Nil uses the external API
	// profile with Timeout applied per attempt.
	Guard *resilience.Config `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Guard == nil {
		guard := resilience.ExternalAPIProfile()
		c.Guard = &guard
	}
	c.Guard.Timeout = c.Timeout
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	v := validation.New()
	v.Required("name", c.Name)
	v.PositiveDuration("timeout", c.Timeout)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
