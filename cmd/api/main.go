package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/stocksim/internal/api"
	"github.com/baharkarakas/stocksim/internal/auth"
	"github.com/baharkarakas/stocksim/internal/config"
	"github.com/baharkarakas/stocksim/internal/db"
	"github.com/baharkarakas/stocksim/internal/logger"
	"github.com/baharkarakas/stocksim/internal/metrics"
	"github.com/baharkarakas/stocksim/internal/middleware"
	"github.com/baharkarakas/stocksim/internal/quote"
	repo "github.com/baharkarakas/stocksim/internal/repository"
	"github.com/baharkarakas/stocksim/internal/repository/memory"
	"github.com/baharkarakas/stocksim/internal/repository/postgres"
	"github.com/baharkarakas/stocksim/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine, the process environment still applies
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("load .env", "err", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	quotes := quote.New(cfg.QuoteBaseURL, cfg.QuoteAPIKey, cfg.QuoteTimeout)
	tm := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Users:     services.NewUserService(store.Repos().Users, cfg.StartingCash),
		Trades:    services.NewTradeService(store, quotes),
		Portfolio: services.NewPortfolioService(store.Repos(), quotes, cfg.QuoteConcurrency),
		History:   services.NewHistoryService(store.Repos().Transactions),
		Session:   middleware.NewAuthMiddleware(tm, cfg.SessionSecure),
		RateRPS:   cfg.RateRPS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// openStore returns the configured store and a func releasing its resources.
func openStore(ctx context.Context, cfg config.Config) (repo.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.Migrate {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		slog.Info("migrations applied")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(pool), pool.Close, nil
}
