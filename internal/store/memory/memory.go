// Package memory holds map-backed implementations of the store repositories.
// Safe for concurrent use; data is lost on restart. Used by tests and by the
// "memory" store backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// nowFunc stamps UpdatedAt on balance writes; swappable in tests.
var nowFunc = time.Now

// AccountStore is an in-memory AccountRepository.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]map[string]*domain.Account // userID -> accountID -> row
}

// NewAccountStore creates an empty in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]map[string]*domain.Account)}
}

// Get implements store.AccountRepository.
func (s *AccountStore) Get(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[userID][accountID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Copy so callers cannot mutate stored state.
	out := *acc
	return &out, nil
}

// Put implements store.AccountRepository.
func (s *AccountStore) Put(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accounts[account.UserID] == nil {
		s.accounts[account.UserID] = make(map[string]*domain.Account)
	}
	stored := *account
	s.accounts[account.UserID][account.ID] = &stored
	return nil
}

// List implements store.AccountRepository. Results are ordered by creation
// time for stable listings.
func (s *AccountStore) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Account, 0, len(s.accounts[userID]))
	for _, acc := range s.accounts[userID] {
		out := *acc
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateBalance implements store.AccountRepository.
func (s *AccountStore) UpdateBalance(ctx context.Context, userID, accountID string, newBalance float64, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID][accountID]
	if !ok {
		return domain.ErrNotFound
	}
	if acc.Version != expectedVersion {
		return store.ErrVersionConflict
	}
	acc.Balance = newBalance
	acc.Version++
	acc.UpdatedAt = nowFunc()
	return nil
}

// TransactionStore is an in-memory TransactionRepository.
type TransactionStore struct {
	mu  sync.RWMutex
	txs map[string]map[string]*domain.Transaction // userID -> txID -> row
}

// NewTransactionStore creates an empty in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{txs: make(map[string]map[string]*domain.Transaction)}
}

// Get implements store.TransactionRepository.
func (s *TransactionStore) Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[userID][transactionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *tx
	return &out, nil
}

// Put implements store.TransactionRepository.
func (s *TransactionStore) Put(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.txs[tx.UserID] == nil {
		s.txs[tx.UserID] = make(map[string]*domain.Transaction)
	}
	stored := *tx
	s.txs[tx.UserID][tx.ID] = &stored
	return nil
}

// Delete implements store.TransactionRepository.
func (s *TransactionStore) Delete(ctx context.Context, userID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[userID][transactionID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.txs[userID], transactionID)
	return nil
}

// List implements store.TransactionRepository. Results are ordered by
// transaction date, oldest first.
func (s *TransactionStore) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Transaction, 0, len(s.txs[userID]))
	for _, tx := range s.txs[userID] {
		out := *tx
		result = append(result, &out)
	}
	sortByDate(result)
	return result, nil
}

// ScanRecurring implements store.TransactionRepository.
func (s *TransactionStore) ScanRecurring(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, partition := range s.txs {
		for _, tx := range partition {
			if !tx.Recurring {
				continue
			}
			out := *tx
			result = append(result, &out)
		}
	}
	sortByDate(result)
	return result, nil
}

func sortByDate(txs []*domain.Transaction) {
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date == txs[j].Date {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Date < txs[j].Date
	})
}

// Ensure the stores satisfy the repository interfaces.
var _ store.AccountRepository = (*AccountStore)(nil)
var _ store.TransactionRepository = (*TransactionStore)(nil)
