package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/stocksim/internal/api/httpx"
	"github.com/baharkarakas/stocksim/internal/middleware"
	"github.com/baharkarakas/stocksim/internal/quote"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/baharkarakas/stocksim/internal/services"
)

// fail renders err as an apology when it is a user-facing rejection and as
// an opaque error otherwise.
func fail(w http.ResponseWriter, r *http.Request, err error, rejectStatus int) {
	var rej *services.Rejection
	switch {
	case errors.As(err, &rej):
		httpx.Apology(w, rejectStatus, rej.Error())
	case errors.Is(err, repo.ErrNotFound):
		// session outlived its user
		http.Redirect(w, r, "/logout", http.StatusFound)
	case errors.Is(err, quote.ErrUnknownSymbol):
		// only reachable when a held symbol lost its quote
		slog.Warn("held symbol has no quote", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.Apology(w, http.StatusBadGateway, "No current price for a stock you own, try again later")
	case errors.Is(err, quote.ErrUnavailable):
		slog.Warn("quote lookup failed", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusBadGateway, httpx.CodeQuoteUnavailable, "quote service unavailable, try again later", nil)
	default:
		slog.Error("request failed", "err", err, "path", r.URL.Path, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.Internal(w)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
	}
	return uid, ok
}

func home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type formView struct {
	Fields []string `json:"fields"`
}
