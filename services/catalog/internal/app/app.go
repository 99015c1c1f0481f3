package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httpclient"
	pkgkafka "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/kafka"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/tracing"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/auth"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/cms"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/config"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/event"
	handler "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/handler/http"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/repository/postgres"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage/local"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage/memory"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/storage/s3"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/migrations"
)

// cmsTimeout bounds a single request to the remote CMS.
const cmsTimeout = 10 * time.Second

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// With CATALOG_SOURCE=cms the service is a read-only storefront over the
// remote CMS and no database is opened.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler("catalog")

	// Kafka is optional; without brokers events are dropped.
	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, catalog events are disabled")
	}
	eventProducer := event.NewProducer(publisher, logger)

	var handlers handler.Handlers
	switch cfg.Source {
	case config.SourceCMS:
		client := cms.NewClient(cfg.CMSURL, httpclient.NewDefault("cms", cmsTimeout, logger), logger)
		catalog := service.NewCatalogService(client, cfg.ProductsLimit, logger)
		handlers.Storefront = handler.NewStorefrontHandler(catalog, logger)
		logger.Info("serving catalog from CMS", slog.String("url", cfg.CMSURL))

	default:
		if handlers, err = a.initDatabase(ctx, healthHandler, eventProducer); err != nil {
			a.close()
			return nil, err
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handlers, handler.RouterConfig{
		CORS:           corsCfg,
		CacheMaxAge:    cfg.CacheMaxAge,
		PprofCIDRs:     cfg.PprofCIDRs,
		TokenValidator: jwtManager.TokenValidator(),
	}, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// initDatabase opens the pool, applies migrations and builds the handlers
// backed by the local repositories.
func (a *App) initDatabase(ctx context.Context, healthHandler *health.Handler, producer *event.Producer) (handler.Handlers, error) {
	cfg, logger := a.cfg, a.logger

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return handler.Handlers{}, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
	)
	database.RegisterPoolMetrics(pool, "catalog")
	healthHandler.Register("postgres", pool.Ping)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return handler.Handlers{}, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	store, files, err := newStorage(ctx, cfg)
	if err != nil {
		return handler.Handlers{}, err
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		healthHandler.Register("storage", pinger.Ping)
	}
	logger.Info("media storage initialized", slog.String("driver", cfg.StorageDriver))

	// Build the dependency graph.
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	mediaRepo := postgres.NewMediaRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	reader := service.NewRepositoryReader(categoryRepo, productRepo, mediaRepo)
	catalogService := service.NewCatalogService(reader, cfg.ProductsLimit, logger)
	adminService := service.NewAdminService(categoryRepo, productRepo, producer, logger)
	mediaService := service.NewMediaService(mediaRepo, store, producer, logger)
	userService := service.NewUserService(userRepo, auth.NewHasher(cfg.BcryptCost),
		auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry), logger)
	seedService := service.NewSeedService(categoryRepo, productRepo, adminService, cfg.SeedSecret, logger)
	collectionService := service.NewCollectionService(categoryRepo, productRepo, mediaRepo, logger)

	return handler.Handlers{
		Storefront: handler.NewStorefrontHandler(catalogService, logger),
		Collection: handler.NewCollectionHandler(collectionService, logger),
		Admin:      handler.NewAdminHandler(adminService, logger),
		Media:      handler.NewMediaHandler(mediaService, logger),
		Users:      handler.NewUserHandler(userService, cfg.SecureCookie, logger),
		Seed:       handler.NewSeedHandler(seedService, logger),
		MediaFiles: files,
	}, nil
}

// newStorage selects the media storage driver. The returned handler serves
// stored files and is nil when the driver serves them itself.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, http.Handler, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		store, err := s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return store, nil, nil
	case config.StorageMemory:
		return memory.New(cfg.MediaBaseURL), nil, nil
	default:
		store, err := local.New(cfg.StorageRoot, cfg.MediaBaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init local storage: %w", err)
		}
		return store, store.Handler(), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("source", a.cfg.Source),
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

// Shutdown drains HTTP requests, then flushes spans, closes the Kafka
// producer and closes the pool.
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

	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
