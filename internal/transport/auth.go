package transport

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths never require an API key: liveness probes, the status surface,
// and the webhook intake (push devices authenticate out of band).
var publicPaths = map[string]struct{}{
	"":                    {}, // "/"
	"/health":             {},
	"/api/status":         {},
	"/api/health/webhook": {},
}

// APIKeyMiddleware requires the X-API-Key header on non-public endpoints.
// An empty configured key disables auth entirely (dev mode).
func APIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			path := strings.TrimRight(r.URL.Path, "/")
			if _, ok := publicPaths[path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "invalid or missing API key",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
