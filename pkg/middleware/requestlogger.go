package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context carrying
// correlation_id, user_id, session_id, trace_id and span_id. Mount it after
// RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := UserIDFromContext(ctx); id != "" && logger.UserIDFromContext(ctx) == "" {
				ctx = logger.WithUserID(ctx, id)
			}
			if sid := r.Header.Get(SessionHeader); sid != "" && logger.SessionIDFromContext(ctx) == "" {
				ctx = logger.WithSessionID(ctx, sid)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
