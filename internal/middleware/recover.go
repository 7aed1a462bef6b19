package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
)

// Recover turns a handler panic into a 500. http.ErrAbortHandler is re-raised
// so the server can abort the response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic",
				"err", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFrom(r.Context()),
				"stack", string(debug.Stack()),
			)
			httpx.Internal(w)
		}()
		next.ServeHTTP(w, r)
	})
}
