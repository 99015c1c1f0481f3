package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      100 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("cb-trip"), newTestLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Get(context.Background(), srv.URL)
		var se *ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.Status)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	healthy.Store(true)
	time.Sleep(150 * time.Millisecond)

	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("cb-4xx"), newTestLogger())
	for i := 0; i < 5; i++ {
		resp, err := cb.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("cb-fallback"), newTestLogger()).
		WithFallback(func(context.Context, error) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("cached"))}, nil
		})

	for i := 0; i < 3; i++ {
		_, _ = cb.Get(context.Background(), srv.URL)
	}
	resp, err := cb.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "cached", string(body))
}

func TestCircuitBreaker_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sess-1", r.Header.Get("X-Cart-Session"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"data":{"totalItems":2}}`))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"product not found"}}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testCBConfig("cart"), newTestLogger())
	hdr := http.Header{"X-Cart-Session": []string{"sess-1"}}

	var out struct {
		Data struct {
			TotalItems int `json:"totalItems"`
		} `json:"data"`
	}
	require.NoError(t, cb.GetJSON(context.Background(), srv.URL+"/ok", hdr, &out))
	assert.Equal(t, 2, out.Data.TotalItems)

	err := cb.GetJSON(context.Background(), srv.URL+"/missing", hdr, &out)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "cart: product not found")

	err = cb.GetJSON(context.Background(), srv.URL+"/down", hdr, &out)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestCircuitBreaker_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"q":"mac"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cb := NewDefault("search", time.Second, newTestLogger())
	require.NoError(t, cb.PostJSON(context.Background(), srv.URL, nil, map[string]string{"q": "mac"}, nil))
	assert.Equal(t, "search", cb.Name())
}

func TestStateToFloat(t *testing.T) {
	assert.Equal(t, 0.0, stateToFloat(gobreaker.StateClosed))
	assert.Equal(t, 1.0, stateToFloat(gobreaker.StateHalfOpen))
	assert.Equal(t, 2.0, stateToFloat(gobreaker.StateOpen))
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("cms", ErrCircuitOpen)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Contains(t, err.Error(), "temporarily disabled")

	err = Unavailable("cms", errors.New("dial tcp: refused"))
	assert.Contains(t, err.Error(), "cms is unavailable")
}
