package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/validator"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/checkout/internal/service"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 64 << 10

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// PlaceOrder handles POST /api/v1/checkout
// @Summary Submit the checkout form
// @Description Validates the contact form, snapshots the session cart and emits an order request. Requires X-Cart-Session header.
// @Tags checkout
// @Accept json
// @Produce json
// @Param X-Cart-Session header string true "Cart session id"
// @Param request body service.PlaceOrderInput true "Checkout form"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/checkout [post]
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	session := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
	if session == "" {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", middleware.SessionHeader+" header is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req service.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	accepted, err := h.service.PlaceOrder(r.Context(), session, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusAccepted, accepted)
}

// FormatPhone handles GET /api/v1/checkout/phone-format
// @Summary Mask a phone number
// @Description Applies the +7 (999) 999-99-99 mask to a partially typed number.
// @Tags checkout
// @Produce json
// @Param value query string false "Raw input"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/checkout/phone-format [get]
func (h *CheckoutHandler) FormatPhone(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.FormatPhone(r.URL.Query().Get("value")))
}
