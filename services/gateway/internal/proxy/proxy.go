package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	stdhttputil "net/http/httputil"
	"net/url"
	"sort"
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
)

// TransportConfig tunes the connections to backends.
type TransportConfig struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	IdleTimeout     time.Duration
	MaxIdleConns    int
}

type backend struct {
	target *url.URL
	proxy  *stdhttputil.ReverseProxy
}

// ServiceProxy manages reverse proxies to backend services.
type ServiceProxy struct {
	backends map[string]backend
	probe    *httpclient.Client
	logger   *slog.Logger
}

// NewServiceProxy creates a reverse proxy per backend. An invalid URL is
// an error.
func NewServiceProxy(backends map[string]string, tc TransportConfig, logger *slog.Logger) (*ServiceProxy, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   tc.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          tc.MaxIdleConns,
		MaxIdleConnsPerHost:   tc.MaxIdleConns,
		IdleConnTimeout:       tc.IdleTimeout,
		ResponseHeaderTimeout: tc.ResponseTimeout,
		TLSHandshakeTimeout:   5 * time.Second,
	}

	probeCfg := httpclient.DefaultConfig()
	probeCfg.Timeout = 2 * time.Second
	probeCfg.MaxRetries = 0

	sp := &ServiceProxy{
		backends: make(map[string]backend, len(backends)),
		probe:    httpclient.New(probeCfg),
		logger:   logger,
	}

	for name, rawURL := range backends {
		target, err := url.Parse(rawURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid %s service URL %q", name, rawURL)
		}

		sp.backends[name] = backend{
			target: target,
			proxy: &stdhttputil.ReverseProxy{
				Rewrite: func(pr *stdhttputil.ProxyRequest) {
					pr.SetURL(target)
					pr.SetXForwarded()
				},
				Transport:    transport,
				ErrorHandler: sp.errorHandler(name),
			},
		}

		logger.Info("registered service proxy",
			slog.String("service", name),
			slog.String("target", rawURL),
		)
	}

	return sp, nil
}

// Names returns the registered backend names, sorted.
func (sp *ServiceProxy) Names() []string {
	names := make([]string, 0, len(sp.backends))
	for name := range sp.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler returns an http.Handler that proxies requests to the named backend.
func (sp *ServiceProxy) Handler(name string) http.Handler {
	b, ok := sp.backends[name]
	if !ok {
		sp.logger.Error("no proxy registered for service", slog.String("service", name))
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			httputil.WriteErrorCode(w, http.StatusBadGateway, "SERVICE_UNAVAILABLE", "service not configured")
		})
	}
	return b.proxy
}

// Ping checks that the named backend answers its liveness probe.
func (sp *ServiceProxy) Ping(name string) func(context.Context) error {
	return func(ctx context.Context) error {
		b, ok := sp.backends[name]
		if !ok {
			return fmt.Errorf("unknown service %q", name)
		}
		resp, err := sp.probe.Get(ctx, b.target.JoinPath("/health/live").String())
		if err != nil {
			return fmt.Errorf("%s unreachable: %w", name, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s liveness returned %d", name, resp.StatusCode)
		}
		return nil
	}
}

// errorHandler logs transport failures and answers 502 BAD_GATEWAY.
func (sp *ServiceProxy) errorHandler(name string) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		sp.logger.ErrorContext(r.Context(), "proxy error",
			slog.String("service", name),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		httputil.WriteErrorCode(w, http.StatusBadGateway, "BAD_GATEWAY", "upstream service unavailable")
	}
}
