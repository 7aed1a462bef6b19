package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/stocksim/internal/auth"
)

const SessionCookie = "session"

type ctxKey string

const ctxUserIDKey ctxKey = "uid"

func WithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, uid)
}

func UserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(int64)
	return v, ok
}

type AuthMiddleware struct {
	TM     *auth.TokenManager
	Secure bool
}

func NewAuthMiddleware(tm *auth.TokenManager, secure bool) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, Secure: secure}
}

// RequireLogin redirects to /login unless the request carries a valid session cookie.
func (m *AuthMiddleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		uid, err := m.TM.Parse(c.Value)
		if err != nil {
			slog.Debug("rejected session", "err", err, "request_id", RequestIDFrom(r.Context()))
			m.ClearSession(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

// StartSession issues a session token for uid and sets it as an HttpOnly cookie.
func (m *AuthMiddleware) StartSession(w http.ResponseWriter, uid int64) error {
	tok, exp, err := m.TM.Issue(uid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *AuthMiddleware) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
