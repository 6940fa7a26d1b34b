// main is the entry point of the mclens application.
// It analyzes the given logs once, runs a database maintenance task, or starts the HTTP service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mclens/internal/config"
	"github.com/woozymasta/mclens/internal/fake"
	"github.com/woozymasta/mclens/internal/logger"
	"github.com/woozymasta/mclens/internal/maintenance"
	"github.com/woozymasta/mclens/internal/server"
	"github.com/woozymasta/mclens/internal/storage"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	cfg := config.Parse()

	closeLog := logger.Setup(cfg.Logger)
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database is only needed for service mode, maintenance and --input-store
	var store *storage.Repository
	if cfg.Server.Serve || cfg.Maintenance() || cfg.Input.Store {
		var err error
		store, err = storage.New(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to initialize database")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing database")
			}
		}()
	}

	// data generation or database maintenance
	if cfg.Storage.GenerateCount > 0 {
		fake.GenerateData(store, cfg.Builder(), cfg.Storage.GenerateCount)
		return
	} else if maintenance.Run(cfg, store) {
		return
	}

	if !cfg.Server.Serve {
		if err := analyzeInputs(ctx, cfg, store, os.Stdout); err != nil {
			log.Error().Err(err).Msg("Analysis failed")
			exitCode = 1
		}
		return
	}

	serve(ctx, cfg, store)
}

func serve(ctx context.Context, cfg *config.Config, store *storage.Repository) {
	log.Info().Msg("Starting mclens service...")

	// Fail early on a broken pattern table, requests would fail anyway
	if _, err := cfg.PatternSource().Load(); err != nil {
		log.Fatal().Err(err).Msg("Port pattern table unusable")
	}

	srvHandler := server.New(store, cfg)

	// Background queue
	srvHandler.StartWorkers()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srvHandler.Run(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop workers (wait queue done)
	srvHandler.StopWorkers()

	log.Info().Msg("Server exited")
}
