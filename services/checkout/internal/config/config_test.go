package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs sets multiple env vars for the duration of the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8003, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8002", cfg.CartServiceURL)
	assert.Equal(t, 5*time.Second, cfg.CartTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "checkout", cfg.Tracing.ServiceName)
}

func TestLoad_CircuitBreaker(t *testing.T) {
	setEnvs(t, map[string]string{
		"CB_TIMEOUT_SECONDS": "10",
		"CB_MIN_REQUESTS":    "3",
	})

	cfg, err := Load()
	require.NoError(t, err)

	cb := cfg.CircuitBreaker()
	assert.Equal(t, "cart", cb.Name)
	assert.Equal(t, 10*time.Second, cb.Timeout)
	assert.Equal(t, time.Minute, cb.Interval)
	assert.Equal(t, uint32(3), cb.MinRequests)
	assert.InDelta(t, 0.5, cb.FailureRatio, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port", map[string]string{"CHECKOUT_HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"cart url", map[string]string{"CART_SERVICE_URL": "not a url"}, "invalid CART_SERVICE_URL"},
		{"failure ratio", map[string]string{"CB_FAILURE_RATIO": "1.5"}, "CB_FAILURE_RATIO"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "-1"}, "OTEL_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, tt.env)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
