package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citywide-rp/bankcore/internal/config"
	"github.com/citywide-rp/bankcore/internal/db"
	"github.com/citywide-rp/bankcore/internal/events"
	"github.com/citywide-rp/bankcore/internal/gameworld"
	"github.com/citywide-rp/bankcore/internal/handlers"
	"github.com/citywide-rp/bankcore/internal/heist"
	"github.com/citywide-rp/bankcore/internal/keylock"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/service"
	"github.com/citywide-rp/bankcore/internal/session"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting bankcore engine",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	tun, err := tuning.Load(cfg.App.TuningPath)
	if err != nil {
		logger.Error("failed to load tuning", "path", cfg.App.TuningPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	game := gameworld.NewClient(cfg.Game)
	guard := session.NewGuard(cfg.App.SessionTTL)
	locks := keylock.New()
	hub := events.NewHub(logger)

	accountService := service.NewAccountService(database, tun.Economy, logger)
	transactionService := service.NewTransactionService(database, guard, locks, game, hub, tun.Economy, cfg.App.DefaultBranch, logger)
	loanService := service.NewLoanService(database, locks, hub, tun.Economy, logger)

	heistManager := heist.NewManager(
		repository.NewHeistLogRepository(database),
		game, game, game, game,
		hub, tun.Heist, cfg.App.HeistTick, logger,
	)
	if err := heistManager.Rebuild(ctx); err != nil {
		logger.Error("failed to rebuild heist cooldowns", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHandler(accountService, transactionService, loanService, heistManager, guard, logger)
	router := handlers.NewRouter(handler, database, hub.Handler(), cfg.Game.APIKey, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
