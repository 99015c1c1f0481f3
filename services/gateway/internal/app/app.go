package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/handler"
	gwmiddleware "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/proxy"
)

// App wires together all dependencies and runs the storefront gateway.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	limiters       []*gwmiddleware.RateLimiter
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance. The gateway holds no state
// besides per-client rate limits.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	sp, err := proxy.NewServiceProxy(cfg.Backends(), proxy.TransportConfig{
		DialTimeout:     cfg.ProxyDialTimeout,
		ResponseTimeout: cfg.ProxyResponseTimeout,
		IdleTimeout:     cfg.ProxyIdleTimeout,
		MaxIdleConns:    cfg.ProxyMaxIdleConns,
	}, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	healthHandler := health.NewHandler("gateway")
	for _, name := range sp.Names() {
		healthHandler.Register(name, sp.Ping(name))
	}

	limiter := gwmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxyHeaders)
	checkoutLimiter := gwmiddleware.NewRateLimiter(cfg.CheckoutRateLimitRPS, cfg.CheckoutRateLimitBurst, cfg.TrustProxyHeaders)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(sp, handler.RouterConfig{
		CORS:            corsCfg,
		MetricsCIDRs:    cfg.MetricsCIDRs,
		PprofCIDRs:      cfg.PprofCIDRs,
		Limiter:         limiter,
		CheckoutLimiter: checkoutLimiter,
	}, healthHandler, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiters:       []*gwmiddleware.RateLimiter{limiter, checkoutLimiter},
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	for _, l := range a.limiters {
		go l.Run(ctx)
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown drains in-flight requests, then flushes spans.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
