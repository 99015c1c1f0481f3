package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// StorefrontHandler serves the public catalog reads.
type StorefrontHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(svc *service.CatalogService, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		service: svc,
		logger:  logger,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// Catalog handles GET /api/v1/catalog?category=..&storage=..&q=..
// Both filters may repeat. Unknown storage values are dropped.
func (h *StorefrontHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.NewFilter(q["category"], q["storage"])

	view, err := h.service.Catalog(r.Context(), filter, q.Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

// Suggestions handles GET /api/v1/catalog/suggestions?q=..
func (h *StorefrontHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, suggestions)
}

// GetProduct handles GET /api/v1/products/{id}?returnTo=... The id segment may
// also be a slug.
func (h *StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	if idOrSlug == "" {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "product id or slug is required")
		return
	}

	page, err := h.service.Product(r.Context(), idOrSlug, r.URL.Query().Get("returnTo"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}

// GetMedia handles GET /api/v1/media/{id}
func (h *StorefrontHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	media, err := h.service.Media(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, media)
}
