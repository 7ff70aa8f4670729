package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/api"
	"github.com/panduhzz/FinancialTracker/internal/app"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/logger"
	"github.com/panduhzz/FinancialTracker/internal/statements"
)

func main() {
	configPath := flag.String("config", "financialtracker.toml", "path to TOML config file")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	application, err := app.Build(ctx, &cfg, domain.SystemClock{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	defer application.Close()

	// Statement ingestion needs a bucket; without one the endpoint reports
	// the missing configuration instead of failing at startup.
	var stmts *statements.Service
	if cfg.GCP.Bucket != "" {
		stmts = statements.NewService(
			statements.NewGCSBlobStore(cfg.GCP.Bucket),
			statements.NewGeminiAnalyzer(""),
			application.Finance,
			application.Clock,
			log,
		)
	} else {
		log.Warn().Msg("No GCS bucket configured - statement uploads will be disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(application.Finance, stmts, &cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
