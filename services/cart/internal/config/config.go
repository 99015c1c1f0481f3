package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
)

// Config holds all configuration for the cart service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int      `env:"CART_HTTP_PORT" envDefault:"8002"`
	CORSOrigins string   `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	PprofCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Catalog base URL used to price items added without a price. Empty
	// disables the lookup.
	CatalogURL     string        `env:"CATALOG_URL"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`

	// Kafka; empty disables events and the order consumer.
	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envSeparator:","`
	ConsumerGroup  string        `env:"CART_CONSUMER_GROUP" envDefault:"cart-service"`
	IdempotencyTTL time.Duration `env:"CART_IDEMPOTENCY_TTL" envDefault:"24h"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	cfg.Tracing.ServiceName = "cart"
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TTL returns the lifetime of a stored cart.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// Redis returns the Redis connection settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPass,
		DB:       c.RedisDB,
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
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if len(c.KafkaBrokers) > 0 && c.ConsumerGroup == "" {
		return fmt.Errorf("CART_CONSUMER_GROUP is required when KAFKA_BROKERS is set")
	}
	return nil
}
