package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/catalog"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/event"
	handler "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/handler/http"
	redisrepo "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/repository/redis"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/service"
)

// App wires together all dependencies and runs the cart service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumer       *pkgkafka.Consumer
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

	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	healthHandler := health.NewHandler("cart")
	healthHandler.Register("redis", database.RedisPinger(rdb))

	// Kafka is optional; without brokers events are dropped and no order
	// events are consumed.
	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, cart events are disabled")
	}

	// Price lookups are optional; without a catalog every add carries its price.
	var prices service.PriceLookup
	if cfg.CatalogURL != "" {
		cb := httpclient.NewDefault("catalog", cfg.CatalogTimeout, logger)
		prices = catalog.NewClient(cfg.CatalogURL, cb, logger)
		logger.Info("catalog price lookup enabled", slog.String("url", cfg.CatalogURL))
	}

	// Build the dependency graph.
	repo := redisrepo.NewCartRepository(rdb, cfg.TTL())
	eventProducer := event.NewProducer(publisher, logger)
	cartService := service.NewCartService(repo, prices, eventProducer, logger)

	if len(cfg.KafkaBrokers) > 0 {
		a.dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
		consumer := event.NewConsumer(cartService, logger)
		a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.ConsumerGroup,
			Topic:    event.TopicOrderRequested,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}, consumer.HandleOrderRequested, logger,
			pkgkafka.WithDLQ(a.dlq),
			pkgkafka.WithIdempotency(redisrepo.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)),
		)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(cartService, handler.RouterConfig{
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

// Run starts the HTTP server and the order consumer and blocks until the
// context is canceled.
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

	consumerDone := make(chan struct{})
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := a.consumer.Start(consumerCtx); err != nil {
				a.logger.Error("order consumer stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		close(consumerDone)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopConsumer()
	<-consumerDone
	return errors.Join(runErr, a.Shutdown())
}

// Shutdown drains HTTP requests, then closes the consumer, flushes spans,
// closes the Kafka writers and closes Redis.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases everything except the HTTP server.
func (a *App) close() error {
	var errs []error

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
