// Package bigquery implements the store repositories on BigQuery, for
// deployments that keep the finance dataset in the warehouse.
package bigquery

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/panduhzz/FinancialTracker/internal/domain"
)

// AccountRow is the accounts table schema.
type AccountRow struct {
	UserID      string    `bigquery:"user_id"`      // REQUIRED
	AccountID   string    `bigquery:"account_id"`   // REQUIRED
	AccountName string    `bigquery:"account_name"` // REQUIRED
	AccountType string    `bigquery:"account_type"` // REQUIRED
	Balance     float64   `bigquery:"balance"`      // REQUIRED FLOAT64
	Version     int64     `bigquery:"version"`      // REQUIRED
	Active      bool      `bigquery:"active"`       // REQUIRED
	CreatedTS   time.Time `bigquery:"created_ts"`   // REQUIRED
	UpdatedTS   time.Time `bigquery:"updated_ts"`   // REQUIRED
}

// TransactionRow is the transactions table schema.
type TransactionRow struct {
	UserID        string     `bigquery:"user_id"`        // REQUIRED
	TransactionID string     `bigquery:"transaction_id"` // REQUIRED
	AccountID     string     `bigquery:"account_id"`     // REQUIRED
	Amount        float64    `bigquery:"amount"`         // REQUIRED FLOAT64, non-negative magnitude
	Description   string     `bigquery:"description"`    // NULLABLE
	Category      string     `bigquery:"category"`       // NULLABLE
	TxType        string     `bigquery:"tx_type"`        // REQUIRED
	TxDate        civil.Date `bigquery:"tx_date"`        // REQUIRED DATE
	Recurring     bool       `bigquery:"recurring"`      // REQUIRED
	SeriesID      string     `bigquery:"series_id"`      // NULLABLE
	Frequency     string     `bigquery:"frequency"`      // NULLABLE
	StartDate     string     `bigquery:"start_date"`     // NULLABLE, YYYY-MM-DD
	CreatedTS     time.Time  `bigquery:"created_ts"`     // REQUIRED
	UpdatedTS     time.Time  `bigquery:"updated_ts"`     // REQUIRED
}

func accountFromRow(row *AccountRow) *domain.Account {
	return &domain.Account{
		ID:        row.AccountID,
		UserID:    row.UserID,
		Name:      row.AccountName,
		Type:      domain.AccountType(row.AccountType),
		Balance:   row.Balance,
		Version:   row.Version,
		Active:    row.Active,
		CreatedAt: row.CreatedTS,
		UpdatedAt: row.UpdatedTS,
	}
}

func transactionFromRow(row *TransactionRow) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.TransactionID,
		UserID:      row.UserID,
		AccountID:   row.AccountID,
		Amount:      row.Amount,
		Description: row.Description,
		Category:    row.Category,
		Type:        domain.TransactionType(row.TxType),
		Date:        row.TxDate.String(),
		Recurring:   row.Recurring,
		SeriesID:    row.SeriesID,
		Frequency:   domain.Frequency(row.Frequency),
		StartDate:   row.StartDate,
		CreatedAt:   row.CreatedTS,
		UpdatedAt:   row.UpdatedTS,
	}
}

func civilDate(date string) (civil.Date, error) {
	t, err := domain.ParseDate(date)
	if err != nil {
		return civil.Date{}, fmt.Errorf("civilDate: %w", err)
	}
	return civil.DateOf(t), nil
}
