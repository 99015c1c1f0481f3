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
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/service"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all cart service routes registered.
func NewRouter(cartService *service.CartService, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cartHandler := NewCartHandler(cartService, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(ContentTypeJSON)
		r.Use(RequireSession)

		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)

		r.Post("/items", cartHandler.AddItem)
		r.Put("/items/{itemId}", cartHandler.UpdateItemQuantity)
		r.Delete("/items/{itemId}", cartHandler.RemoveItem)
	})

	return r
}
