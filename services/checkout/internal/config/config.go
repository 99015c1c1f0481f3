package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
)

// Config holds all configuration for the checkout service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int      `env:"CHECKOUT_HTTP_PORT" envDefault:"8003"`
	CORSOrigins string   `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	PprofCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Cart service the checkout snapshots.
	CartServiceURL string        `env:"CART_SERVICE_URL" envDefault:"http://localhost:8002"`
	CartTimeout    time.Duration `env:"CART_TIMEOUT" envDefault:"5s"`

	// Circuit breaker settings for cart service calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Kafka; empty drops order requests after logging them.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load checkout config: %w", err)
	}
	cfg.Tracing.ServiceName = "checkout"
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CircuitBreaker returns the breaker settings for the cart client.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "cart",
		MaxRequests:  c.CBMaxRequests,
		Interval:     time.Duration(c.CBInterval) * time.Second,
		Timeout:      time.Duration(c.CBTimeout) * time.Second,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := pkgconfig.ValidatePort("HTTP port", c.HTTPPort); err != nil {
		return err
	}
	if err := pkgconfig.ValidateSampleRate(c.Tracing.SampleRate); err != nil {
		return err
	}
	if c.CartServiceURL == "" {
		return fmt.Errorf("CART_SERVICE_URL is required")
	}
	if _, err := url.ParseRequestURI(c.CartServiceURL); err != nil {
		return fmt.Errorf("invalid CART_SERVICE_URL %q: %w", c.CartServiceURL, err)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1], got %f", c.CBFailureRatio)
	}
	return nil
}
