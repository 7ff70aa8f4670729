// Package app wires the configured store backend into the service graph
// shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/analytics"
	"github.com/panduhzz/FinancialTracker/internal/config"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/finance"
	infrabq "github.com/panduhzz/FinancialTracker/internal/infra/bigquery"
	"github.com/panduhzz/FinancialTracker/internal/ledger"
	"github.com/panduhzz/FinancialTracker/internal/recurring"
	"github.com/panduhzz/FinancialTracker/internal/store"
	"github.com/panduhzz/FinancialTracker/internal/store/memory"
	"github.com/panduhzz/FinancialTracker/internal/store/sqlitestore"
)

// App is the assembled service graph for one process.
type App struct {
	Accounts     store.AccountRepository
	Transactions store.TransactionRepository
	Ledger       *ledger.Ledger
	Materializer *recurring.Materializer
	Aggregator   *analytics.Aggregator
	Finance      *finance.Service
	Clock        domain.Clock

	closer func() error
}

// Build opens the configured store backend and assembles the services.
func Build(ctx context.Context, cfg *config.Config, clock domain.Clock, log zerolog.Logger) (*App, error) {
	accounts, transactions, closer, err := openStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	led := ledger.New(accounts, log)
	mat := recurring.New(accounts, transactions, led, clock, log)
	agg := analytics.New(accounts, transactions, clock)
	svc := finance.NewService(accounts, transactions, led, mat, agg, clock, log)

	log.Info().Str("backend", cfg.Store.Backend).Msg("store backend ready")
	return &App{
		Accounts:     accounts,
		Transactions: transactions,
		Ledger:       led,
		Materializer: mat,
		Aggregator:   agg,
		Finance:      svc,
		Clock:        clock,
		closer:       closer,
	}, nil
}

// Close releases the store backend.
func (a *App) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (store.AccountRepository, store.TransactionRepository, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewAccountStore(), memory.NewTransactionStore(), nil, nil
	case config.BackendSQLite:
		db, err := sqlitestore.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return db.Accounts(), db.Transactions(), db.Close, nil
	case config.BackendBigQuery:
		client, err := infrabq.NewClient(ctx, cfg.GCP.Project, cfg.GCP.Dataset)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening bigquery store: %w", err)
		}
		return client.Accounts(), client.Transactions(), client.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
