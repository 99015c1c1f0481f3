package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/health"
	pkgmiddleware "github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	gwmiddleware "github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/gateway/internal/proxy"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	CORS         pkgmiddleware.CORSConfig
	MetricsCIDRs []string
	PprofCIDRs   []string
	// Limiter applies to every proxied request.
	Limiter *gwmiddleware.RateLimiter
	// CheckoutLimiter additionally applies to order submission.
	CheckoutLimiter *gwmiddleware.RateLimiter
}

// NewRouter creates a chi router that fronts the storefront backends under
// a single origin.
func NewRouter(sp *proxy.ServiceProxy, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(pkgmiddleware.CORS(cfg.CORS))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("gateway"))
	r.Use(pkgmiddleware.Tracing("gateway"))
	r.Use(pkgmiddleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.With(pkgmiddleware.IPAllowlist(cfg.MetricsCIDRs, logger)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	pkgmiddleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalog := sp.Handler("catalog")
	cart := sp.Handler("cart")
	checkout := sp.Handler("checkout")
	productAPI := sp.Handler("productapi")

	r.Group(func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware(logger))
		}

		r.Handle("/api/v1/cart", cart)
		r.Handle("/api/v1/cart/*", cart)

		r.Group(func(r chi.Router) {
			if cfg.CheckoutLimiter != nil {
				r.Use(cfg.CheckoutLimiter.Middleware(logger))
			}
			r.Post("/api/v1/checkout", checkout.ServeHTTP)
			r.Post("/api/v1/checkout/", checkout.ServeHTTP)
		})
		r.Handle("/api/v1/checkout/*", checkout)

		r.Handle("/products", productAPI)
		r.Handle("/products/*", productAPI)

		// Everything else under /api and the stored media belongs to the catalog.
		r.Handle("/api/*", catalog)
		r.Handle("/media/*", catalog)
	})

	return r
}
