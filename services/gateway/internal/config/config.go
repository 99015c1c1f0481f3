package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
)

// Config holds all configuration for the storefront gateway.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"GATEWAY_HTTP_PORT" envDefault:"8080"`

	CORSOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	MetricsCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,10.0.0.0/8,172.16.0.0/12,192.168.0.0/16" envSeparator:","`
	PprofCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// Backend service URLs
	CatalogURL    string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8001"`
	CartURL       string `env:"CART_SERVICE_URL" envDefault:"http://localhost:8002"`
	CheckoutURL   string `env:"CHECKOUT_SERVICE_URL" envDefault:"http://localhost:8003"`
	ProductAPIURL string `env:"PRODUCTAPI_SERVICE_URL" envDefault:"http://localhost:3001"`

	// Upstream transport
	ProxyDialTimeout     time.Duration `env:"PROXY_DIAL_TIMEOUT" envDefault:"5s"`
	ProxyResponseTimeout time.Duration `env:"PROXY_RESPONSE_TIMEOUT" envDefault:"30s"`
	ProxyIdleTimeout     time.Duration `env:"PROXY_IDLE_TIMEOUT" envDefault:"90s"`
	ProxyMaxIdleConns    int           `env:"PROXY_MAX_IDLE_CONNS" envDefault:"100"`

	// Rate limiting, per client IP
	RateLimitRPS           float64 `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst         int     `env:"RATE_LIMIT_BURST" envDefault:"200"`
	CheckoutRateLimitRPS   float64 `env:"CHECKOUT_RATE_LIMIT_RPS" envDefault:"0.2"`
	CheckoutRateLimitBurst int     `env:"CHECKOUT_RATE_LIMIT_BURST" envDefault:"5"`
	// Honor X-Forwarded-For and X-Real-IP; enable only behind a trusted proxy.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load gateway config: %w", err)
	}
	cfg.Tracing.ServiceName = "gateway"
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Backends maps backend names to their base URLs.
func (c *Config) Backends() map[string]string {
	return map[string]string{
		"catalog":    c.CatalogURL,
		"cart":       c.CartURL,
		"checkout":   c.CheckoutURL,
		"productapi": c.ProductAPIURL,
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
	for name, raw := range c.Backends() {
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid %s service URL %q", name, raw)
		}
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.CheckoutRateLimitRPS <= 0 || c.CheckoutRateLimitBurst < 1 {
		return fmt.Errorf("CHECKOUT_RATE_LIMIT_RPS and CHECKOUT_RATE_LIMIT_BURST must be positive")
	}
	return nil
}
