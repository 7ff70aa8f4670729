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

// TransactionStore is the SQLite-backed TransactionRepository.
type TransactionStore struct {
	db *sql.DB
}

const transactionColumns = `user_id, transaction_id, account_id, amount, description, category, tx_type, tx_date, recurring, series_id, frequency, start_date, created_ts, updated_ts`

// Get implements store.TransactionRepository.
func (s *TransactionStore) Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: transaction %s: %w", transactionID, err)
	}
	return tx, nil
}

// Put implements store.TransactionRepository.
func (s *TransactionStore) Put(ctx context.Context, tx *domain.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, transaction_id) DO UPDATE SET
			account_id  = excluded.account_id,
			amount      = excluded.amount,
			description = excluded.description,
			category    = excluded.category,
			tx_type     = excluded.tx_type,
			tx_date     = excluded.tx_date,
			recurring   = excluded.recurring,
			series_id   = excluded.series_id,
			frequency   = excluded.frequency,
			start_date  = excluded.start_date,
			updated_ts  = excluded.updated_ts`,
		tx.UserID, tx.ID, tx.AccountID, tx.Amount, tx.Description, tx.Category,
		string(tx.Type), tx.Date, boolToInt(tx.Recurring), tx.SeriesID,
		string(tx.Frequency), tx.StartDate,
		tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		tx.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("Put: transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Delete implements store.TransactionRepository.
func (s *TransactionStore) Delete(ctx context.Context, userID, transactionID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND transaction_id = ?`,
		userID, transactionID)
	if err != nil {
		return fmt.Errorf("Delete: transaction %s: %w", transactionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List implements store.TransactionRepository.
func (s *TransactionStore) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	return s.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY tx_date, transaction_id`,
		userID)
}

// ScanRecurring implements store.TransactionRepository.
func (s *TransactionStore) ScanRecurring(ctx context.Context) ([]*domain.Transaction, error) {
	return s.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE recurring = 1 ORDER BY tx_date, transaction_id`)
}

func (s *TransactionStore) query(ctx context.Context, q string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("query: scanning transaction: %w", err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: iterating transactions: %w", err)
	}
	return result, nil
}

func scanTransaction(r rowScanner) (*domain.Transaction, error) {
	var (
		tx                   domain.Transaction
		typ, freq            string
		recurring            int
		createdTS, updatedTS string
	)
	err := r.Scan(&tx.UserID, &tx.ID, &tx.AccountID, &tx.Amount, &tx.Description,
		&tx.Category, &typ, &tx.Date, &recurring, &tx.SeriesID, &freq,
		&tx.StartDate, &createdTS, &updatedTS)
	if err != nil {
		return nil, err
	}
	tx.Type = domain.TransactionType(typ)
	tx.Recurring = recurring != 0
	tx.Frequency = domain.Frequency(freq)
	if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdTS); err != nil {
		return nil, fmt.Errorf("parsing created_ts %q: %w", createdTS, err)
	}
	if tx.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedTS); err != nil {
		return nil, fmt.Errorf("parsing updated_ts %q: %w", updatedTS, err)
	}
	return &tx, nil
}

var _ store.TransactionRepository = (*TransactionStore)(nil)
