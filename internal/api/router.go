package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/stocksim/internal/api/handlers"
	"github.com/baharkarakas/stocksim/internal/metrics"
	"github.com/baharkarakas/stocksim/internal/middleware"
	"github.com/baharkarakas/stocksim/internal/services"
)

type RouterDeps struct {
	Users     *services.UserService
	Trades    *services.TradeService
	Portfolio *services.PortfolioService
	History   *services.HistoryService
	Session   *middleware.AuthMiddleware
	RateRPS   int
}

func NewRouter(d RouterDeps) http.Handler {
	authH := handlers.NewAuthHandler(d.Users, d.Session)
	tradeH := handlers.NewTradeHandler(d.Trades, d.Portfolio)
	portH := handlers.NewPortfolioHandler(d.Portfolio, d.History)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.RateRPS))
	r.Use(middleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Get("/register", authH.RegisterForm)
	r.Post("/register", authH.Register)
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Get("/logout", authH.Logout)

	r.Group(func(r chi.Router) {
		r.Use(d.Session.RequireLogin)

		r.Get("/", portH.Index)
		r.Get("/history", portH.History)

		r.Get("/buy", tradeH.BuyForm)
		r.Post("/buy", tradeH.Buy)
		r.Get("/sell", tradeH.SellForm)
		r.Post("/sell", tradeH.Sell)
		r.Get("/quote", tradeH.QuoteForm)
		r.Post("/quote", tradeH.Quote)
	})

	return r
}
