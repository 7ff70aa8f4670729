package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// AccountStore is the SQLite-backed AccountRepository.
type AccountStore struct {
	db *sql.DB
}

const accountColumns = `user_id, account_id, account_name, account_type, balance, version, active, created_ts, updated_ts`

// Get implements store.AccountRepository.
func (s *AccountStore) Get(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? AND account_id = ?`,
		userID, accountID)
	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: account %s: %w", accountID, err)
	}
	return acc, nil
}

// Put implements store.AccountRepository.
func (s *AccountStore) Put(ctx context.Context, account *domain.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, account_id) DO UPDATE SET
			account_name = excluded.account_name,
			account_type = excluded.account_type,
			balance      = excluded.balance,
			version      = excluded.version,
			active       = excluded.active,
			updated_ts   = excluded.updated_ts`,
		account.UserID, account.ID, account.Name, string(account.Type),
		account.Balance, account.Version, boolToInt(account.Active),
		account.CreatedAt.UTC().Format(time.RFC3339Nano),
		account.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("Put: account %s: %w", account.ID, err)
	}
	return nil
}

// List implements store.AccountRepository.
func (s *AccountStore) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY created_ts, account_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("List: querying accounts: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scanning account: %w", err)
		}
		result = append(result, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: iterating accounts: %w", err)
	}
	return result, nil
}

// UpdateBalance implements store.AccountRepository. The version predicate in
// the UPDATE is the compare-and-swap.
func (s *AccountStore) UpdateBalance(ctx context.Context, userID, accountID string, newBalance float64, expectedVersion int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET balance = ?, version = version + 1, updated_ts = ?
		WHERE user_id = ? AND account_id = ? AND version = ?`,
		newBalance, time.Now().UTC().Format(time.RFC3339Nano),
		userID, accountID, expectedVersion)
	if err != nil {
		return fmt.Errorf("UpdateBalance: account %s: %w", accountID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a missing row from a lost version race.
	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE user_id = ? AND account_id = ?`,
		userID, accountID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("UpdateBalance: checking account %s: %w", accountID, err)
	}
	return store.ErrVersionConflict
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (*domain.Account, error) {
	var (
		acc                  domain.Account
		typ                  string
		active               int
		createdTS, updatedTS string
	)
	err := r.Scan(&acc.UserID, &acc.ID, &acc.Name, &typ, &acc.Balance,
		&acc.Version, &active, &createdTS, &updatedTS)
	if err != nil {
		return nil, err
	}
	acc.Type = domain.AccountType(typ)
	acc.Active = active != 0
	if acc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdTS); err != nil {
		return nil, fmt.Errorf("parsing created_ts %q: %w", createdTS, err)
	}
	if acc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedTS); err != nil {
		return nil, fmt.Errorf("parsing updated_ts %q: %w", updatedTS, err)
	}
	return &acc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ store.AccountRepository = (*AccountStore)(nil)
