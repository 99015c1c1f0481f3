package http

import (
	"net/http"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/middleware"
)

// maxSessionLength bounds the X-Cart-Session header.
const maxSessionLength = 128

// RequireSession reads the X-Cart-Session header and stores it in the
// request context. A missing or oversized header is rejected with 400.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := strings.TrimSpace(r.Header.Get(middleware.SessionHeader))
		if session == "" {
			httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", middleware.SessionHeader+" header is required")
			return
		}
		if len(session) > maxSessionLength {
			httputil.WriteErrorCode(w, http.StatusBadRequest, "INVALID_INPUT", middleware.SessionHeader+" header is too long")
			return
		}
		ctx := logger.WithSessionID(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromContext returns the session stored by RequireSession.
func sessionFromContext(r *http.Request) string {
	return logger.SessionIDFromContext(r.Context())
}

// ContentTypeJSON rejects write requests whose body is not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteErrorCode(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
