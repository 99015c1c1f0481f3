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
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
)

// Handlers groups the route handlers. Everything except Storefront is
// optional: when the catalog is read from a remote CMS there is no local
// database to write to, and a nil handler leaves its routes unmounted.
type Handlers struct {
	Storefront *StorefrontHandler
	Collection *CollectionHandler
	Admin      *AdminHandler
	Media      *MediaHandler
	Users      *UserHandler
	Seed       *SeedHandler
	// MediaFiles serves stored uploads under /media/ when the storage
	// driver keeps them locally.
	MediaFiles http.Handler
}

// RouterConfig holds router settings.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	CacheMaxAge    int
	PprofCIDRs     []string
	TokenValidator middleware.TokenValidator
}

// NewRouter creates a chi router with all catalog service routes registered.
func NewRouter(h Handlers, cfg RouterConfig, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))
	r.Use(middleware.Tracing("catalog"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	cache := middleware.CacheControl(cfg.CacheMaxAge)
	var admin func(http.Handler) http.Handler
	if cfg.TokenValidator != nil {
		auth := middleware.Auth(cfg.TokenValidator)
		role := middleware.RequireRole(domain.RoleAdmin)
		admin = func(next http.Handler) http.Handler { return auth(role(next)) }
	}
	writable := admin != nil && h.Admin != nil

	r.Route("/api/v1", func(r chi.Router) {
		r.With(cache).Get("/media/{id}", h.Storefront.GetMedia)
		if admin != nil && h.Media != nil {
			// Multipart, so outside the JSON content-type check.
			r.With(admin).Post("/media", h.Media.Upload)
			r.With(admin).Delete("/media/{id}", h.Media.Delete)
		}

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Route("/categories", func(r chi.Router) {
				r.With(cache).Get("/", h.Storefront.ListCategories)
				if writable {
					r.With(admin).Post("/", h.Admin.CreateCategory)
					r.With(admin).Put("/{id}", h.Admin.UpdateCategory)
					r.With(admin).Delete("/{id}", h.Admin.DeleteCategory)
				}
			})

			r.With(cache).Get("/catalog", h.Storefront.Catalog)
			r.With(cache).Get("/catalog/suggestions", h.Storefront.Suggestions)

			r.Route("/products", func(r chi.Router) {
				r.With(cache).Get("/{id}", h.Storefront.GetProduct)
				if writable {
					r.With(admin).Post("/", h.Admin.CreateProduct)
					r.With(admin).Put("/{id}", h.Admin.UpdateProduct)
					r.With(admin).Delete("/{id}", h.Admin.DeleteProduct)
				}
			})

			if h.Users != nil {
				r.Route("/users", func(r chi.Router) {
					r.Use(middleware.NoStore)
					r.Post("/login", h.Users.Login)
					r.Post("/logout", h.Users.Logout)
					if admin != nil {
						r.With(admin).Get("/me", h.Users.Me)
					}
				})
			}
		})
	})

	if h.Seed != nil {
		r.With(middleware.NoStore).Get("/api/seed", h.Seed.Seed)
	}

	if h.Collection != nil {
		r.Route("/api/{collection}", func(r chi.Router) {
			r.Use(cache)
			r.Get("/", h.Collection.List)
			r.Get("/{id}", h.Collection.Get)
		})
	}

	if h.MediaFiles != nil {
		r.Handle("/media/*", http.StripPrefix("/media/", h.MediaFiles))
	}

	return r
}
