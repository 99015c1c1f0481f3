package http

import (
	"log/slog"
	"net/http"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// SeedHandler serves the demo-content seed route.
type SeedHandler struct {
	service *service.SeedService
	logger  *slog.Logger
}

// NewSeedHandler creates a new seed HTTP handler.
func NewSeedHandler(svc *service.SeedService, logger *slog.Logger) *SeedHandler {
	return &SeedHandler{
		service: svc,
		logger:  logger,
	}
}

// Seed handles GET /api/seed?key=..
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Authorize(r.URL.Query().Get("key")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.Seed(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
