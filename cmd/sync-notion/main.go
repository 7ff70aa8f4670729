// One-shot export of a user's transactions into a Notion database.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/app"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/logger"
	"github.com/panduhzz/FinancialTracker/internal/notionexport"
)

func main() {
	var (
		configPath = flag.String("config", "financialtracker.toml", "path to TOML config file")
		userID     = flag.String("user", "", "owner id to export")
		dryRun     = flag.Bool("dry-run", false, "report what would be exported without writing")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *userID == "" {
		log.Fatal().Msg("--user is required")
	}
	if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
		log.Fatal().Msg("Notion token and database id must be configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	application, err := app.Build(ctx, &cfg, domain.SystemClock{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build application")
	}
	defer application.Close()

	txs, err := application.Finance.ListTransactions(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	exporter := notionexport.NewExporter(notionexport.NewClient(cfg.Notion.Token), cfg.Notion.DatabaseID, log)
	report, err := exporter.Export(ctx, txs, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	log.Info().Int("created", report.Created).Int("skipped", report.Skipped).Msg("Export complete")
}
