package middleware

import "net/http"

// NoCache keeps browsers and proxies from caching any response.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Expires", "0")
		h.Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
