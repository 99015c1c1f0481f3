package http

import (
	"net/http"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
)

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

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20
