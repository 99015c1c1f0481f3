package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// AdminHandler handles the authenticated category and product writes.
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service: svc,
		logger:  logger,
	}
}

// decodeJSON reads a capped JSON body into dst and validates it. It writes
// the error response itself and reports whether the caller may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// CreateCategory handles POST /api/v1/categories
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req domain.UpdateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateProduct handles POST /api/v1/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req domain.UpdateProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
