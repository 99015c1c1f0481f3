package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"CATALOG_HTTP_PORT" envDefault:"8001"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithPrefix is like Load but only considers variables starting with
// prefix. It lets two services share one process environment without their
// port or database variables colliding.
func LoadWithPrefix(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config with prefix %q: %w", prefix, err)
	}
	return nil
}

// ValidatePort reports an error when port is outside the TCP range.
func ValidatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s: %d", name, port)
	}
	return nil
}

// ValidateSampleRate reports an error when an OpenTelemetry sample rate is
// outside [0, 1].
func ValidateSampleRate(rate float64) error {
	if rate < 0 || rate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", rate)
	}
	return nil
}
