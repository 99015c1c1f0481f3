package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8002, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 168*time.Hour, cfg.TTL())
	assert.Empty(t, cfg.CatalogURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "cart-service", cfg.ConsumerGroup)
	assert.Equal(t, "cart", cfg.Tracing.ServiceName)
}

func TestLoad_Redis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.prod:6380")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	rc := cfg.Redis()
	assert.Equal(t, "redis.prod:6380", rc.Addr)
	assert.Equal(t, 2, rc.DB)
}

func TestLoad_KafkaAndCatalog(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CATALOG_URL", "http://catalog:8001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://catalog:8001", cfg.CatalogURL)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port",
			env:     map[string]string{"CART_HTTP_PORT": "0"},
			wantErr: "invalid HTTP port",
		},
		{
			name:    "sample rate",
			env:     map[string]string{"OTEL_SAMPLE_RATE": "2.0"},
			wantErr: "OTEL_SAMPLE_RATE must be between 0.0 and 1.0",
		},
		{
			name:    "ttl",
			env:     map[string]string{"CART_TTL_HOURS": "0"},
			wantErr: "CART_TTL_HOURS must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
