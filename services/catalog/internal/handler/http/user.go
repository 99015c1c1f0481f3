package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/domain"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/services/catalog/internal/service"
)

// UserHandler handles admin sign-in.
type UserHandler struct {
	service      *service.UserService
	secureCookie bool
	logger       *slog.Logger
}

// NewUserHandler creates a new user HTTP handler. secureCookie marks the
// token cookie Secure.
func NewUserHandler(svc *service.UserService, secureCookie bool, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:      svc,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Login handles POST /api/v1/users/login. The token is returned in the body
// and set as an HttpOnly cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteData(w, http.StatusOK, res)
}

// Logout handles POST /api/v1/users/logout by clearing the token cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(middleware.UserIDFromContext(r.Context()), 10, 64)
	if err != nil {
		httputil.WriteErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token subject")
		return
	}

	user, err := h.service.Me(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}
