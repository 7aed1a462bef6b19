package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
)

type tokenBucket struct {
	mu     sync.Mutex
	tokens int
	last   time.Time
	rate   int
	burst  int
}

func newTokenBucket(rps int, now time.Time) *tokenBucket {
	return &tokenBucket{tokens: rps, last: now, rate: rps, burst: rps}
}

func (tb *tokenBucket) allow(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if refill := int(now.Sub(tb.last).Seconds() * float64(tb.rate)); refill > 0 {
		tb.tokens = min(tb.tokens+refill, tb.burst)
		tb.last = now
	}
	if tb.tokens == 0 {
		return false
	}
	tb.tokens--
	return true
}

// RateLimit caps the server at rps requests per second. rps <= 0 disables it.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	tb := newTokenBucket(rps, time.Now())
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.allow(time.Now()) {
				w.Header().Set("Retry-After", "1")
				httpx.WriteError(w, http.StatusTooManyRequests, httpx.CodeRateLimited, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
