package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/productapi/internal/service"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	CacheMaxAge int
	PprofCIDRs  []string
}

// NewRouter creates a chi router with the products API routes registered.
func NewRouter(productService *service.ProductService, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("productapi"))
	r.Use(middleware.Tracing("productapi"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health", Health)
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	productHandler := NewProductHandler(productService, logger)

	r.Route("/products", func(r chi.Router) {
		r.Use(middleware.CacheControl(cfg.CacheMaxAge))

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
	})

	return r
}
