package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	pkgmiddleware "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	gwmiddleware "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/proxy"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serviceEchoServer answers with the backend name and the path it received.
func serviceEchoServer(name string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"service": name,
			"path":    r.URL.Path,
		})
	}))
}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	backends := make(map[string]string)
	for _, name := range []string{"catalog", "cart", "checkout", "productapi"} {
		srv := serviceEchoServer(name)
		t.Cleanup(srv.Close)
		backends[name] = srv.URL
	}

	logger := testLogger()
	sp, err := proxy.NewServiceProxy(backends, proxy.TransportConfig{
		DialTimeout:     time.Second,
		ResponseTimeout: 5 * time.Second,
		IdleTimeout:     time.Minute,
		MaxIdleConns:    10,
	}, logger)
	require.NoError(t, err)

	cfg.CORS = pkgmiddleware.DefaultCORSConfig()
	if cfg.MetricsCIDRs == nil {
		cfg.MetricsCIDRs = []string{"127.0.0.0/8"}
	}
	return NewRouter(sp, cfg, health.NewHandler("gateway"), logger)
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_RoutesToBackends(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	tests := []struct {
		method  string
		path    string
		service string
	}{
		{http.MethodGet, "/api/v1/catalog", "catalog"},
		{http.MethodGet, "/api/v1/catalog/suggestions", "catalog"},
		{http.MethodGet, "/api/v1/categories", "catalog"},
		{http.MethodGet, "/api/v1/products/12", "catalog"},
		{http.MethodPost, "/api/v1/users/login", "catalog"},
		{http.MethodGet, "/api/products", "catalog"},
		{http.MethodGet, "/api/seed", "catalog"},
		{http.MethodGet, "/media/2025/06/phone.jpg", "catalog"},
		{http.MethodGet, "/api/v1/cart", "cart"},
		{http.MethodPost, "/api/v1/cart/items", "cart"},
		{http.MethodDelete, "/api/v1/cart/items/1%7Cblack%7C%7Cesim", "cart"},
		{http.MethodPost, "/api/v1/checkout", "checkout"},
		{http.MethodGet, "/api/v1/checkout/phone-format", "checkout"},
		{http.MethodGet, "/products", "productapi"},
		{http.MethodGet, "/products/7d3c5f0e-2f7a-4a59-8b7e-0c1f5b6f9a10", "productapi"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := serve(h, tt.method, tt.path)
			require.Equal(t, http.StatusOK, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.service, body["service"])
		})
	}
}

func TestRouter_UnknownPath_Returns404(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/nonexistent").Code)
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/ready").Code)
}

func TestRouter_Metrics_Allowlist(t *testing.T) {
	h := newTestRouter(t, RouterConfig{MetricsCIDRs: []string{"10.0.0.0/8"}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodGet, "/metrics").Code)
}

func TestRouter_CheckoutLimiter_OnlyLimitsSubmission(t *testing.T) {
	h := newTestRouter(t, RouterConfig{
		Limiter:         gwmiddleware.NewRateLimiter(1000, 1000, false),
		CheckoutLimiter: gwmiddleware.NewRateLimiter(0.001, 1, false),
	})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/api/v1/checkout").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodPost, "/api/v1/checkout").Code)

	// Other routes share only the general limiter.
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/checkout/phone-format").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/cart").Code)
}

func TestRouter_GeneralLimiter(t *testing.T) {
	h := newTestRouter(t, RouterConfig{Limiter: gwmiddleware.NewRateLimiter(0.001, 2, false)})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/catalog").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/products").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodGet, "/api/v1/cart").Code)

	// Health probes are never limited.
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health/live").Code)
}
