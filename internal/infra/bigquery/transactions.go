package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// TransactionStore is the BigQuery-backed TransactionRepository.
type TransactionStore struct {
	client *Client
}

const transactionSelect = `user_id, transaction_id, account_id, amount, description, category, tx_type, tx_date, recurring, series_id, frequency, start_date, created_ts, updated_ts`

// Get implements store.TransactionRepository.
func (s *TransactionStore) Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	q := s.client.bq.Query(fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = @user_id AND transaction_id = @transaction_id
		LIMIT 1
	`, transactionSelect, s.client.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Get: reading query: %w", err)
	}
	var row TransactionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: iterating: %w", err)
	}
	return transactionFromRow(&row), nil
}

// Put implements store.TransactionRepository.
func (s *TransactionStore) Put(ctx context.Context, tx *domain.Transaction) error {
	txDate, err := civilDate(tx.Date)
	if err != nil {
		return fmt.Errorf("Put: transaction %s: %w", tx.ID, err)
	}

	q := s.client.bq.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @user_id AS user_id, @transaction_id AS transaction_id) S
		ON T.user_id = S.user_id AND T.transaction_id = S.transaction_id
		WHEN MATCHED THEN UPDATE SET
			account_id  = @account_id,
			amount      = @amount,
			description = @description,
			category    = @category,
			tx_type     = @tx_type,
			tx_date     = @tx_date,
			recurring   = @recurring,
			series_id   = @series_id,
			frequency   = @frequency,
			start_date  = @start_date,
			updated_ts  = @updated_ts
		WHEN NOT MATCHED THEN INSERT
			(%s)
		VALUES
			(@user_id, @transaction_id, @account_id, @amount, @description, @category, @tx_type, @tx_date, @recurring, @series_id, @frequency, @start_date, @created_ts, @updated_ts)
	`, s.client.table("transactions"), transactionSelect))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: tx.UserID},
		{Name: "transaction_id", Value: tx.ID},
		{Name: "account_id", Value: tx.AccountID},
		{Name: "amount", Value: tx.Amount},
		{Name: "description", Value: tx.Description},
		{Name: "category", Value: tx.Category},
		{Name: "tx_type", Value: string(tx.Type)},
		{Name: "tx_date", Value: txDate},
		{Name: "recurring", Value: tx.Recurring},
		{Name: "series_id", Value: tx.SeriesID},
		{Name: "frequency", Value: string(tx.Frequency)},
		{Name: "start_date", Value: tx.StartDate},
		{Name: "created_ts", Value: tx.CreatedAt},
		{Name: "updated_ts", Value: tx.UpdatedAt},
	}

	if _, err := s.client.run(ctx, q); err != nil {
		return fmt.Errorf("Put: transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Delete implements store.TransactionRepository.
func (s *TransactionStore) Delete(ctx context.Context, userID, transactionID string) error {
	q := s.client.bq.Query(fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = @user_id AND transaction_id = @transaction_id
	`, s.client.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}

	affected, err := s.client.run(ctx, q)
	if err != nil {
		return fmt.Errorf("Delete: transaction %s: %w", transactionID, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List implements store.TransactionRepository.
func (s *TransactionStore) List(ctx context.Context, userID string) ([]*domain.Transaction, error) {
	q := s.client.bq.Query(fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = @user_id
		ORDER BY tx_date, transaction_id
	`, transactionSelect, s.client.table("transactions")))
	q.Parameters = []bigquery.QueryParameter{{Name: "user_id", Value: userID}}
	return s.read(ctx, q)
}

// ScanRecurring implements store.TransactionRepository.
func (s *TransactionStore) ScanRecurring(ctx context.Context) ([]*domain.Transaction, error) {
	q := s.client.bq.Query(fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE recurring = TRUE
		ORDER BY tx_date, transaction_id
	`, transactionSelect, s.client.table("transactions")))
	return s.read(ctx, q)
}

func (s *TransactionStore) read(ctx context.Context, q *bigquery.Query) ([]*domain.Transaction, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read: reading query: %w", err)
	}
	result := make([]*domain.Transaction, 0)
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read: iterating: %w", err)
		}
		result = append(result, transactionFromRow(&row))
	}
	return result, nil
}

var _ store.TransactionRepository = (*TransactionStore)(nil)
