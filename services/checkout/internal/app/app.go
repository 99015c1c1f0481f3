package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/cart"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/event"
	handler "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/handler/http"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/service"
)

// App wires together all dependencies and runs the checkout service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}

	healthHandler := health.NewHandler("checkout")

	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, order requests are not delivered")
	}

	// Cart client with retries behind a circuit breaker.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.CartTimeout
	cbClient := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cfg.CircuitBreaker(), logger)
	carts := cart.NewClient(cfg.CartServiceURL, cbClient, logger)

	// Build the dependency graph.
	eventProducer := event.NewProducer(publisher, logger)
	checkoutService := service.NewCheckoutService(carts, eventProducer, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(checkoutService, handler.RouterConfig{
		CORS:       corsCfg,
		PprofCIDRs: cfg.PprofCIDRs,
	}, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
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

// Shutdown drains HTTP requests, then flushes spans and closes the Kafka
// producer.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer tracerCancel()
	if err := a.tracerShutdown(tracerCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
