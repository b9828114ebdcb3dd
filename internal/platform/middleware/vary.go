package middleware

import (
	"net/http"
	"strings"
)

// Vary adds Accept to the Vary header. Health and error responses are
// negotiated between JSON and CBOR, so caches must key on Accept.
// Origin is added separately by the CORS middleware.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasToken(w.Header().Values("Vary"), "Accept") {
				w.Header().Add("Vary", "Accept")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasToken(values []string, token string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}
