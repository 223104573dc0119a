package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	const secret = "mirror-token"

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := Middleware(secret, ok)

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer mirror-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong token", "Bearer wrong-token", http.StatusUnauthorized},
		{"no bearer prefix", "mirror-token", http.StatusUnauthorized},
		{"wrong scheme", "Basic mirror-token", http.StatusUnauthorized},
		{"bearer case insensitive", "bearer mirror-token", http.StatusOK},
		{"empty token value", "Bearer ", http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, c.wantStatus, w.Code)
			if c.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="allmeta"`, w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestMiddleware_EmptyTokenIsOpen(t *testing.T) {
	handler := Middleware("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSetBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	SetBearer(req, "")
	assert.Empty(t, req.Header.Get("Authorization"))

	SetBearer(req, "abc")
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	assert.True(t, Valid(req.Header.Get("Authorization"), "abc"))
}
