// Package ledger keeps each account's current-balance field consistent with
// the net effect of the transactions referencing it.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// maxAttempts bounds the read-compare-swap retry loop on version conflicts.
const maxAttempts = 5

// Ledger applies signed balance deltas to accounts. Updates are conditional
// on the account's version, so two concurrent writers cannot silently lose
// an update: the loser re-reads and retries.
type Ledger struct {
	accounts store.AccountRepository
	log      zerolog.Logger
}

// New creates a Ledger over the given account repository.
func New(accounts store.AccountRepository, log zerolog.Logger) *Ledger {
	return &Ledger{accounts: accounts, log: log}
}

// Apply adjusts the account balance by the signed delta of the transaction
// type: income adds the amount, expense and transfer subtract it. An unknown
// type is an error and nothing is written.
func (l *Ledger) Apply(ctx context.Context, userID, accountID string, amount float64, typ domain.TransactionType) error {
	delta, err := typ.Delta(amount)
	if err != nil {
		return fmt.Errorf("Apply: %w", err)
	}
	return l.shift(ctx, userID, accountID, delta)
}

// Reverse undoes the balance effect a transaction of the given type had,
// used when the transaction is deleted. An unknown type is an error since
// the sign-reversal rule needs a known type.
func (l *Ledger) Reverse(ctx context.Context, userID, accountID string, amount float64, typ domain.TransactionType) error {
	delta, err := typ.ReversalDelta(amount)
	if err != nil {
		return fmt.Errorf("Reverse: %w", err)
	}
	return l.shift(ctx, userID, accountID, delta)
}

// shift applies a signed delta with a bounded compare-and-swap loop.
func (l *Ledger) shift(ctx context.Context, userID, accountID string, delta float64) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		acc, err := l.accounts.Get(ctx, userID, accountID)
		if err != nil {
			return fmt.Errorf("shift: reading account %s: %w", accountID, err)
		}

		err = l.accounts.UpdateBalance(ctx, userID, accountID, acc.Balance+delta, acc.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return fmt.Errorf("shift: updating balance of account %s: %w", accountID, err)
		}

		l.log.Debug().
			Str("account_id", accountID).
			Int("attempt", attempt).
			Msg("balance update lost version race, retrying")
	}
	return fmt.Errorf("shift: account %s: gave up after %d version conflicts", accountID, maxAttempts)
}
