// Package config loads guardrail configuration from guardrail.yml and the
// environment.
//
// It uses Viper to read the YAML file, godotenv to load .env files, and
// binds environment variables over file values so every threshold can be
// overridden per deployment (e.g. BREAKER_FAILURE_THRESHOLD=3).
//
// # Usage
//
//	var cfg config.Config
//	err := config.Load(&cfg)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
package config
