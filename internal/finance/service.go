// Package finance orchestrates the account and transaction operations:
// validation, persistence, ledger bookkeeping and recurring backfill.
package finance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/analytics"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/ledger"
	"github.com/panduhzz/FinancialTracker/internal/recurring"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// Service wires the repositories, ledger and materializer behind the API.
type Service struct {
	accounts     store.AccountRepository
	transactions store.TransactionRepository
	ledger       *ledger.Ledger
	materializer *recurring.Materializer
	aggregator   *analytics.Aggregator
	clock        domain.Clock
	log          zerolog.Logger
}

// NewService creates the orchestration service.
func NewService(
	accounts store.AccountRepository,
	transactions store.TransactionRepository,
	led *ledger.Ledger,
	mat *recurring.Materializer,
	agg *analytics.Aggregator,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		ledger:       led,
		materializer: mat,
		aggregator:   agg,
		clock:        clock,
		log:          log,
	}
}

// CreateAccountInput carries the caller-supplied account fields.
type CreateAccountInput struct {
	Name      string
	Type      string
	Balance   float64
	CreatedAt time.Time // optional; future values are clamped to now
}

// CreateAccount validates and persists a new account.
func (s *Service) CreateAccount(ctx context.Context, userID string, in CreateAccountInput) (*domain.Account, error) {
	typ, err := domain.ParseAccountType(in.Type)
	if err != nil {
		return nil, err
	}
	acc, err := domain.NewAccount(uuid.NewString(), userID, in.Name, typ, in.Balance, in.CreatedAt, s.clock)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Put(ctx, acc); err != nil {
		return nil, fmt.Errorf("CreateAccount: persisting account: %w", err)
	}
	s.aggregator.Invalidate(userID)
	s.log.Info().Str("account_id", acc.ID).Str("user_id", userID).Msg("account created")
	return acc, nil
}

// GetAccount returns one account; domain.ErrNotFound if absent.
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	return s.accounts.Get(ctx, userID, accountID)
}

// ListAccounts returns the user's active accounts. A first-time user gets an
// empty slice.
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*domain.Account, error) {
	all, err := s.accounts.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	active := make([]*domain.Account, 0, len(all))
	for _, acc := range all {
		if acc.Active {
			active = append(active, acc)
		}
	}
	return active, nil
}

// DeleteAccount soft-deletes: the row stays, flagged inactive.
func (s *Service) DeleteAccount(ctx context.Context, userID, accountID string) error {
	acc, err := s.accounts.Get(ctx, userID, accountID)
	if err != nil {
		return err
	}
	acc.Active = false
	acc.UpdatedAt = s.clock.Now()
	if err := s.accounts.Put(ctx, acc); err != nil {
		return fmt.Errorf("DeleteAccount: persisting account: %w", err)
	}
	s.aggregator.Invalidate(userID)
	s.log.Info().Str("account_id", accountID).Str("user_id", userID).Msg("account soft-deleted")
	return nil
}

// CreateTransactionInput carries the caller-supplied transaction fields.
// Dates may arrive in any supported format; they are normalized here, at the
// ingestion boundary, and nowhere else.
type CreateTransactionInput struct {
	AccountID   string
	Amount      float64
	Description string
	Category    string
	Type        string
	Date        string
	Recurring   bool
	Frequency   string
	StartDate   string // defaults to Date when recurring and empty
}

// CreateTransaction validates, persists and applies one transaction. For a
// recurring transaction it also backfills the series history; a backfill
// failure is logged but never fails the creation, so the first occurrence
// always survives.
func (s *Service) CreateTransaction(ctx context.Context, userID string, in CreateTransactionInput) (*domain.Transaction, error) {
	date, err := domain.NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	tx := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Type:        domain.TransactionType(in.Type),
		Date:        date,
		Recurring:   in.Recurring,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Recurring {
		freq, err := domain.ParseFrequency(in.Frequency)
		if err != nil {
			return nil, err
		}
		start := in.StartDate
		if start == "" {
			start = date
		} else if start, err = domain.NormalizeDate(start); err != nil {
			return nil, err
		}
		tx.Frequency = freq
		tx.StartDate = start
		tx.SeriesID = uuid.NewString()
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	// The referenced account must exist; the store does not enforce the
	// foreign key.
	if _, err := s.accounts.Get(ctx, userID, tx.AccountID); err != nil {
		return nil, fmt.Errorf("CreateTransaction: resolving account %s: %w", tx.AccountID, err)
	}

	if err := s.transactions.Put(ctx, tx); err != nil {
		return nil, fmt.Errorf("CreateTransaction: persisting transaction: %w", err)
	}
	// An un-reflected balance change would break the ledger invariant, so
	// this failure propagates even though the row is already persisted.
	if err := s.ledger.Apply(ctx, userID, tx.AccountID, tx.Amount, tx.Type); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}
	s.aggregator.Invalidate(userID)

	if tx.Recurring {
		created, err := s.materializer.Backfill(ctx, tx)
		if err != nil {
			// At-least-the-first-occurrence guarantee: the originating
			// transaction stands regardless of backfill trouble.
			s.log.Error().Err(err).
				Str("series_id", tx.SeriesID).
				Int("backfilled", created).
				Msg("recurring backfill failed")
		} else if created > 0 {
			s.log.Info().
				Str("series_id", tx.SeriesID).
				Int("backfilled", created).
				Msg("recurring series backfilled")
		}
		if created > 0 {
			s.aggregator.Invalidate(userID)
		}
	}
	return tx, nil
}

// GetTransaction returns one transaction; domain.ErrNotFound if absent.
func (s *Service) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	return s.transactions.Get(ctx, userID, transactionID)
}

// ListTransactions returns the user's transactions ordered by date.
func (s *Service) ListTransactions(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return s.transactions.List(ctx, userID)
}

// DeleteTransaction removes the row and reverses its ledger effect, exactly
// once. A transaction whose type is no longer recognized cannot be reversed
// and is left in place.
func (s *Service) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	tx, err := s.transactions.Get(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	// Resolve the reversal sign before touching anything.
	if _, err := tx.Type.ReversalDelta(tx.Amount); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if err := s.transactions.Delete(ctx, userID, transactionID); err != nil {
		return fmt.Errorf("DeleteTransaction: deleting row: %w", err)
	}
	if err := s.ledger.Reverse(ctx, userID, tx.AccountID, tx.Amount, tx.Type); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	s.aggregator.Invalidate(userID)
	s.log.Info().Str("transaction_id", transactionID).Str("user_id", userID).Msg("transaction deleted")
	return nil
}

// SeriesSummary is the listing shape for one recurring series: its template
// fields, every recorded occurrence date in order, and the next expected
// date.
type SeriesSummary struct {
	SeriesID    string                 `json:"series_id"`
	AccountID   string                 `json:"account_id"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Amount      float64                `json:"amount"`
	Type        domain.TransactionType `json:"transaction_type"`
	Frequency   domain.Frequency       `json:"frequency"`
	StartDate   string                 `json:"start_date"`
	Dates       []string               `json:"occurrence_dates"`
	NextDate    string                 `json:"next_date"`
}

// ListRecurringSeries groups the user's recurring transactions by series and
// reports sorted occurrence dates plus the next expected one.
func (s *Service) ListRecurringSeries(ctx context.Context, userID string) ([]*SeriesSummary, error) {
	txs, err := s.transactions.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListRecurringSeries: %w", err)
	}

	bySeries := make(map[string]*SeriesSummary)
	var order []string
	for _, tx := range txs {
		if !tx.Recurring || tx.SeriesID == "" {
			continue
		}
		sum, ok := bySeries[tx.SeriesID]
		if !ok {
			sum = &SeriesSummary{
				SeriesID:    tx.SeriesID,
				AccountID:   tx.AccountID,
				Description: tx.Description,
				Category:    tx.Category,
				Amount:      tx.Amount,
				Type:        tx.Type,
				Frequency:   tx.Frequency,
				StartDate:   tx.StartDate,
			}
			bySeries[tx.SeriesID] = sum
			order = append(order, tx.SeriesID)
		}
		sum.Dates = append(sum.Dates, tx.Date)
	}

	result := make([]*SeriesSummary, 0, len(bySeries))
	for _, id := range order {
		sum := bySeries[id]
		sort.Strings(sum.Dates)
		next, err := recurring.NextOccurrence(sum.Dates[len(sum.Dates)-1], sum.Frequency)
		if err != nil {
			s.log.Warn().Err(err).Str("series_id", id).Msg("cannot compute next occurrence")
		} else {
			sum.NextDate = next
		}
		result = append(result, sum)
	}
	return result, nil
}

// MonthlySummaries buckets the user's transactions into the trailing months.
func (s *Service) MonthlySummaries(ctx context.Context, userID string, months int) ([]analytics.MonthlySummary, error) {
	txs, err := s.transactions.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("MonthlySummaries: %w", err)
	}
	return analytics.MonthlySummaries(txs, months, s.clock), nil
}

// BalanceHistory reconstructs the user's per-account and net-worth history.
func (s *Service) BalanceHistory(ctx context.Context, userID string, months int) ([]*analytics.MonthPoint, error) {
	return s.aggregator.BalanceHistory(ctx, userID, months)
}
