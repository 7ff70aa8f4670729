// The worker runs the recurring-transaction materializer once per day at
// the configured hour and exposes its metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/panduhzz/FinancialTracker/internal/app"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/logger"
)

func main() {
	configPath := flag.String("config", "financialtracker.toml", "path to TOML config file")
	runNow := flag.Bool("run-now", false, "run one materializer tick immediately and exit")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Build(ctx, &cfg, domain.SystemClock{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	defer application.Close()

	if *runNow {
		report := application.Materializer.RunDaily(ctx)
		log.Info().Int("created", report.Created).Int("failed", report.Failed).Msg("tick finished")
		return
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		log.Info().Msg("Shutting down")
		cancel()
	}()

	log.Info().Int("daily_hour", cfg.Worker.DailyHour).Msg("worker started")
	for {
		wait := untilNextRun(time.Now(), cfg.Worker.DailyHour)
		log.Info().Dur("sleep", wait).Msg("sleeping until next tick")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		report := application.Materializer.RunDaily(ctx)
		log.Info().Int("created", report.Created).Int("failed", report.Failed).Msg("tick finished")
	}
}

// untilNextRun returns the duration until the next occurrence of hour,
// which is tomorrow when today's has already passed.
func untilNextRun(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
