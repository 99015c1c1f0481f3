package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/httputil"
	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
)

type contextKeyType string

const (
	userIDKey contextKeyType = "user_id"
	roleKey   contextKeyType = "role"
)

// TokenCookie is the cookie the admin login sets alongside the JSON token.
const TokenCookie = "rublestore-token"

// Claims are the identity fields the auth middleware places in context.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator verifies a raw token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid token with 401.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				httputil.WriteErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed credentials")
				return
			}
			claims, err := validate(token)
			if err != nil {
				httputil.WriteErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and lets
// anonymous requests through untouched.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := extractToken(r); ok {
				if claims, err := validate(token); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 403 unless the authenticated role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[RoleFromContext(r.Context())]; !ok {
				httputil.WriteErrorCode(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken accepts "Bearer <t>", the "JWT <t>" scheme used by headless
// CMS clients, or the TokenCookie.
func extractToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || token == "" {
			return "", false
		}
		if strings.EqualFold(scheme, "bearer") || strings.EqualFold(scheme, "jwt") {
			return token, true
		}
		return "", false
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func withClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, c.UserID)
	ctx = context.WithValue(ctx, roleKey, c.Role)
	return logger.WithUserID(ctx, c.UserID)
}

// UserIDFromContext returns the authenticated user ID, or "".
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// RoleFromContext returns the authenticated role, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
