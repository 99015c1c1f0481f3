package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/logger"
)

func staticValidator(valid string, claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		if token != valid {
			return nil, errors.New("bad token")
		}
		return claims, nil
	}
}

func TestAuth(t *testing.T) {
	validate := staticValidator("good", &Claims{UserID: "7", Email: "admin@ruble.store", Role: "admin"})

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{"missing header", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
		{"empty token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") }, http.StatusUnauthorized},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"jwt scheme", func(r *http.Request) { r.Header.Set("Authorization", "JWT good") }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) }, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser, gotRole, gotLogUser string
			h := Auth(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserIDFromContext(r.Context())
				gotRole = RoleFromContext(r.Context())
				gotLogUser = logger.UserIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusOK {
				assert.Equal(t, "7", gotUser)
				assert.Equal(t, "admin", gotRole)
				assert.Equal(t, "7", gotLogUser)
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	validate := staticValidator("good", &Claims{UserID: "1", Role: "editor"})
	var role string
	h := OptionalAuth(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role = RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, role)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, role)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "editor", role)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	chain := func(role string) http.Handler {
		return Auth(staticValidator("t", &Claims{UserID: "1", Role: role}))(RequireRole("admin")(next))
	}

	for role, want := range map[string]int{"admin": http.StatusNoContent, "editor": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		chain(role).ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
