package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
)

// Config holds all configuration for the products API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int      `env:"PRODUCTAPI_HTTP_PORT" envDefault:"3001"`
	CORSOrigins []string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000" envSeparator:","`
	CacheMaxAge int      `env:"PRODUCTAPI_CACHE_MAX_AGE" envDefault:"60"`
	PprofCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// PostgreSQL
	DBHost     string `env:"PRODUCTAPI_DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"PRODUCTAPI_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"PRODUCTAPI_DB_USER" envDefault:"rublestore"`
	DBPassword string `env:"PRODUCTAPI_DB_PASSWORD" envDefault:"rublestore_secret"`
	DBName     string `env:"PRODUCTAPI_DB_NAME" envDefault:"productapi"`
	DBSSLMode  string `env:"PRODUCTAPI_DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"PRODUCTAPI_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns int32  `env:"PRODUCTAPI_DB_MIN_CONNS" envDefault:"2"`
	// Queries slower than this are logged; 0 disables it.
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load productapi config: %w", err)
	}
	cfg.Tracing.ServiceName = "productapi"
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Postgres returns the pool settings for the products database.
func (c *Config) Postgres() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.DBHost
	pg.Port = c.DBPort
	pg.User = c.DBUser
	pg.Password = c.DBPassword
	pg.DBName = c.DBName
	pg.SSLMode = c.DBSSLMode
	pg.MaxConns = c.DBMaxConns
	pg.MinConns = c.DBMinConns
	return &pg
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := pkgconfig.ValidatePort("HTTP port", c.HTTPPort); err != nil {
		return err
	}
	if err := pkgconfig.ValidateSampleRate(c.Tracing.SampleRate); err != nil {
		return err
	}
	if c.CacheMaxAge < 0 {
		return fmt.Errorf("PRODUCTAPI_CACHE_MAX_AGE must not be negative")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("PRODUCTAPI_DB_MIN_CONNS (%d) exceeds PRODUCTAPI_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
