// Package auth handles the bearer tokens exchanged between allmeta
// resolvers and private Maven mirrors, including allmeta's own.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Realm is announced in the WWW-Authenticate header of rejected requests.
const Realm = "allmeta"

// SetBearer adds token to req as a bearer credential. An empty token leaves
// req untouched so anonymous repositories keep working.
func SetBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Valid reports whether the Authorization header value carries token.
func Valid(header, token string) bool {
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(value), []byte(token)) == 1
}

// Middleware returns an HTTP middleware that validates the Bearer token.
// An empty token disables the check.
func Middleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Valid(r.Header.Get("Authorization"), token) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="`+Realm+`"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
