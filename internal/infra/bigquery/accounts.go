package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// AccountStore is the BigQuery-backed AccountRepository.
type AccountStore struct {
	client *Client
}

// Get implements store.AccountRepository.
func (s *AccountStore) Get(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	q := s.client.bq.Query(fmt.Sprintf(`
		SELECT user_id, account_id, account_name, account_type, balance, version, active, created_ts, updated_ts
		FROM %s
		WHERE user_id = @user_id AND account_id = @account_id
		LIMIT 1
	`, s.client.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "account_id", Value: accountID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Get: reading query: %w", err)
	}
	var row AccountRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: iterating: %w", err)
	}
	return accountFromRow(&row), nil
}

// Put implements store.AccountRepository via MERGE so creates and updates
// share one statement.
func (s *AccountStore) Put(ctx context.Context, account *domain.Account) error {
	q := s.client.bq.Query(fmt.Sprintf(`
		MERGE %s T
		USING (SELECT @user_id AS user_id, @account_id AS account_id) S
		ON T.user_id = S.user_id AND T.account_id = S.account_id
		WHEN MATCHED THEN UPDATE SET
			account_name = @account_name,
			account_type = @account_type,
			balance      = @balance,
			version      = @version,
			active       = @active,
			updated_ts   = @updated_ts
		WHEN NOT MATCHED THEN INSERT
			(user_id, account_id, account_name, account_type, balance, version, active, created_ts, updated_ts)
		VALUES
			(@user_id, @account_id, @account_name, @account_type, @balance, @version, @active, @created_ts, @updated_ts)
	`, s.client.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: account.UserID},
		{Name: "account_id", Value: account.ID},
		{Name: "account_name", Value: account.Name},
		{Name: "account_type", Value: string(account.Type)},
		{Name: "balance", Value: account.Balance},
		{Name: "version", Value: account.Version},
		{Name: "active", Value: account.Active},
		{Name: "created_ts", Value: account.CreatedAt},
		{Name: "updated_ts", Value: account.UpdatedAt},
	}

	if _, err := s.client.run(ctx, q); err != nil {
		return fmt.Errorf("Put: account %s: %w", account.ID, err)
	}
	return nil
}

// List implements store.AccountRepository.
func (s *AccountStore) List(ctx context.Context, userID string) ([]*domain.Account, error) {
	q := s.client.bq.Query(fmt.Sprintf(`
		SELECT user_id, account_id, account_name, account_type, balance, version, active, created_ts, updated_ts
		FROM %s
		WHERE user_id = @user_id
		ORDER BY created_ts
	`, s.client.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{{Name: "user_id", Value: userID}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: reading query: %w", err)
	}
	result := make([]*domain.Account, 0)
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iterating: %w", err)
		}
		result = append(result, accountFromRow(&row))
	}
	return result, nil
}

// UpdateBalance implements store.AccountRepository. The version predicate
// makes the update conditional; zero affected rows means either a missing
// account or a lost race.
func (s *AccountStore) UpdateBalance(ctx context.Context, userID, accountID string, newBalance float64, expectedVersion int64) error {
	q := s.client.bq.Query(fmt.Sprintf(`
		UPDATE %s
		SET balance = @balance,
		    version = version + 1,
		    updated_ts = CURRENT_TIMESTAMP()
		WHERE user_id = @user_id AND account_id = @account_id AND version = @version
	`, s.client.table("accounts")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "balance", Value: newBalance},
		{Name: "user_id", Value: userID},
		{Name: "account_id", Value: accountID},
		{Name: "version", Value: expectedVersion},
	}

	affected, err := s.client.run(ctx, q)
	if err != nil {
		return fmt.Errorf("UpdateBalance: account %s: %w", accountID, err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.Get(ctx, userID, accountID); err != nil {
		return err
	}
	return store.ErrVersionConflict
}

var _ store.AccountRepository = (*AccountStore)(nil)
