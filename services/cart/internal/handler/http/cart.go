package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/cart/internal/service"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 64 << 10

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// decodeJSON decodes and validates the request body into dst. An empty body
// decodes to the zero value. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

// itemID returns the unescaped {itemId} path parameter. Item ids contain
// "|" separators and arbitrary variant labels, so clients escape them.
// chi matches on RawPath when the request carries one, and only then is the
// parameter still escaped.
func itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "itemId")
	id := raw
	if r.URL.RawPath != "" {
		var err error
		if id, err = url.PathUnescape(raw); err != nil {
			id = ""
		}
	}
	if id == "" {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid item id: "+raw)
		return "", false
	}
	return id, true
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), sessionFromContext(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), sessionFromContext(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req service.UpdateQuantityInput
	if !decodeJSON(w, r, &req) {
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), sessionFromContext(r), id, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sessionFromContext(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), sessionFromContext(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}
