// Package store defines the entity-store boundary: partitioned repositories
// for accounts and transactions with point lookups, upserts, deletes and
// scans. Filtering beyond the partition key happens in application code.
//
// Implementations: memory (tests and single-process use), sqlitestore
// (local file database) and infra/bigquery (cloud warehouse).
package store

import (
	"context"
	"errors"

	"github.com/panduhzz/FinancialTracker/internal/domain"
)

// ErrVersionConflict reports that a conditional balance update lost the race:
// the account's version no longer matched the expected one. Callers re-read
// and retry.
var ErrVersionConflict = errors.New("account version conflict")

// AccountRepository stores accounts partitioned by user.
type AccountRepository interface {
	// Get returns domain.ErrNotFound when the account does not exist.
	Get(ctx context.Context, userID, accountID string) (*domain.Account, error)

	// Put upserts the account row.
	Put(ctx context.Context, account *domain.Account) error

	// List scans the user's partition, including soft-deleted accounts.
	// A first-time user with no rows yields an empty slice, not an error.
	List(ctx context.Context, userID string) ([]*domain.Account, error)

	// UpdateBalance writes newBalance and bumps the version, but only if the
	// stored version still equals expectedVersion. Returns ErrVersionConflict
	// otherwise, and domain.ErrNotFound for a missing account.
	UpdateBalance(ctx context.Context, userID, accountID string, newBalance float64, expectedVersion int64) error
}

// TransactionRepository stores transactions partitioned by user.
type TransactionRepository interface {
	// Get returns domain.ErrNotFound when the transaction does not exist.
	Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)

	// Put upserts the transaction row.
	Put(ctx context.Context, tx *domain.Transaction) error

	// Delete removes the row. Deleting a missing row returns
	// domain.ErrNotFound.
	Delete(ctx context.Context, userID, transactionID string) error

	// List scans the user's partition. Empty for first-time users.
	List(ctx context.Context, userID string) ([]*domain.Transaction, error)

	// ScanRecurring is a cross-partition scan of every row flagged
	// recurring, used by the daily materializer job.
	ScanRecurring(ctx context.Context) ([]*domain.Transaction, error)
}
