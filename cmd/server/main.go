// Package main is the entry point for the DCF valuation service.
// It values companies with a discounted-cash-flow model over statements
// fetched from Financial Modeling Prep, serves the results over a REST API,
// and revalues a configured watchlist on schedule.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/halessi/dcf/internal/clients/fmp"
	"github.com/halessi/dcf/internal/config"
	"github.com/halessi/dcf/internal/database"
	"github.com/halessi/dcf/internal/modules/snapshots"
	"github.com/halessi/dcf/internal/modules/valuation"
	"github.com/halessi/dcf/internal/scheduler"
	"github.com/halessi/dcf/internal/server"
	"github.com/halessi/dcf/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting DCF valuation service")

	// Run store for persisted valuations
	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "dcf.db"),
		Name: "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open run store")
	}
	defer db.Close()

	log.Info().Str("database", db.Name()).Str("path", db.Path()).Msg("Run store opened")

	runs := snapshots.NewRepository(db.Conn())
	if err := runs.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate run store")
	}

	// Statement provider and valuation service
	fmpClient := fmp.NewClient(cfg.FMPAPIKey, log)
	service := valuation.NewService(fmpClient, runs, cfg.Valuation, log)

	// HTTP server
	srv := server.New(server.Config{
		Log:       log,
		DB:        db,
		Valuation: service,
		Runs:      runs,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Background jobs: watchlist revaluation and run retention
	sched := scheduler.New(log)

	if len(cfg.Watchlist.Tickers) > 0 {
		job := scheduler.NewRevalueJob(service, cfg.Watchlist.Tickers, log)
		if err := sched.AddJob(cfg.Watchlist.Schedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Watchlist.Schedule).Msg("Failed to register watchlist job")
		}
	}

	if cfg.Watchlist.RetentionDays > 0 {
		maxAge := time.Duration(cfg.Watchlist.RetentionDays) * 24 * time.Hour
		job := scheduler.NewRetentionJob(runs, maxAge, log)
		if err := sched.AddJob("@daily", job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register retention job")
		}
	}

	sched.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
