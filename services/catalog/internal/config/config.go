package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
)

// Catalog sources.
const (
	SourceDB  = "db"
	SourceCMS = "cms"
)

// Storage drivers.
const (
	StorageLocal  = "local"
	StorageMemory = "memory"
	StorageS3     = "s3"
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int    `env:"CATALOG_HTTP_PORT" envDefault:"8001"`
	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
	// Seconds public reads may be cached by clients.
	CacheMaxAge int      `env:"CATALOG_CACHE_MAX_AGE" envDefault:"60"`
	PprofCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`

	// Where storefront reads come from: the local database or a remote CMS.
	Source string `env:"CATALOG_SOURCE" envDefault:"db"`
	CMSURL string `env:"CMS_URL"`
	// Published products loaded per catalog request; 0 loads all of them.
	ProductsLimit int `env:"CATALOG_PRODUCTS_LIMIT" envDefault:"0"`

	// PostgreSQL
	DBHost     string `env:"CATALOG_DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"CATALOG_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"CATALOG_DB_USER" envDefault:"rublestore"`
	DBPassword string `env:"CATALOG_DB_PASSWORD" envDefault:"rublestore_secret"`
	DBName     string `env:"CATALOG_DB_NAME" envDefault:"catalog"`
	DBSSLMode  string `env:"CATALOG_DB_SSLMODE" envDefault:"disable"`
	DBMaxConns int32  `env:"CATALOG_DB_MAX_CONNS" envDefault:"25"`
	DBMinConns int32  `env:"CATALOG_DB_MIN_CONNS" envDefault:"5"`
	// Queries slower than this are logged; 0 disables it.
	SlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Media storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"local"`
	StorageRoot   string `env:"STORAGE_LOCAL_ROOT" envDefault:"./media"`
	MediaBaseURL  string `env:"MEDIA_BASE_URL" envDefault:"/media"`
	S3Bucket      string `env:"S3_BUCKET"`
	S3Region      string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	S3PublicURL   string `env:"S3_PUBLIC_URL"`

	// Admin auth
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTExpiry    time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	SecureCookie bool          `env:"COOKIE_SECURE" envDefault:"false"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`
	SeedSecret   string        `env:"SEED_SECRET"`

	// Kafka; empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	cfg.Tracing.ServiceName = "catalog"
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Postgres returns the pool settings for the catalog database.
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
	switch c.Source {
	case SourceDB:
	case SourceCMS:
		if c.CMSURL == "" {
			return fmt.Errorf("CMS_URL is required when CATALOG_SOURCE=cms")
		}
	default:
		return fmt.Errorf("invalid CATALOG_SOURCE %q: want db or cms", c.Source)
	}
	switch c.StorageDriver {
	case StorageLocal, StorageMemory:
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want local, memory or s3", c.StorageDriver)
	}
	if c.ProductsLimit < 0 {
		return fmt.Errorf("CATALOG_PRODUCTS_LIMIT must not be negative")
	}
	if c.CacheMaxAge < 0 {
		return fmt.Errorf("CATALOG_CACHE_MAX_AGE must not be negative")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}
