package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminToken guards operator endpoints with a bearer token. An empty token
// disables them entirely.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.NotFound(w, r)
				return
			}
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				authHeader = strings.TrimSpace(authHeader[7:])
			}
			if authHeader == "" || subtle.ConstantTimeCompare([]byte(authHeader), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
