package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType classifies how a transaction affects an account balance.
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// ParseTransactionType normalizes and validates a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionIncome:
		return TransactionIncome, nil
	case TransactionExpense:
		return TransactionExpense, nil
	case TransactionTransfer:
		return TransactionTransfer, nil
	default:
		return "", &ValidationError{Field: "transaction_type", Reason: fmt.Sprintf("unknown transaction type %q", s)}
	}
}

// Delta returns the signed balance effect of a transaction of this type.
// Amounts are stored as non-negative magnitudes; the sign is derived here and
// nowhere else. Transfers are treated as outflows from the referenced account.
func (t TransactionType) Delta(amount float64) (float64, error) {
	switch t {
	case TransactionIncome:
		return amount, nil
	case TransactionExpense, TransactionTransfer:
		return -amount, nil
	default:
		return 0, fmt.Errorf("Delta: unknown transaction type %q", string(t))
	}
}

// ReversalDelta returns the signed amount that undoes a prior application of
// this type, used when a transaction is deleted.
func (t TransactionType) ReversalDelta(amount float64) (float64, error) {
	d, err := t.Delta(amount)
	if err != nil {
		return 0, fmt.Errorf("ReversalDelta: %w", err)
	}
	return -d, nil
}

// Frequency is how often a recurring series produces a new occurrence.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ParseFrequency normalizes and validates a recurrence frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyMonthly:
		return FrequencyMonthly, nil
	case FrequencyYearly:
		return FrequencyYearly, nil
	default:
		return "", &ValidationError{Field: "frequency", Reason: fmt.Sprintf("unknown frequency %q", s)}
	}
}

// Transaction is one dated ledger movement against an account.
//
// Amount is always a non-negative magnitude; Type decides the sign at the
// point of balance application. Date and StartDate are plain calendar dates
// in YYYY-MM-DD form, normalized once at the ingestion boundary so that
// month bucketing never shifts across timezones.
//
// A recurring transaction is both a live occurrence on its own date and a
// member of a series. Every occurrence of the same series carries the same
// SeriesID, Frequency and StartDate; the row whose Date equals StartDate is
// the original the user created.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   string          `json:"account_id"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"transaction_type"`
	Date        string          `json:"transaction_date"`

	Recurring bool      `json:"is_recurring"`
	SeriesID  string    `json:"series_id,omitempty"`
	Frequency Frequency `json:"frequency,omitempty"`
	StartDate string    `json:"start_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the invariants a transaction must satisfy before it is
// persisted. It does not touch the store; existence of the referenced
// account is checked by the service layer.
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if t.AccountID == "" {
		return &ValidationError{Field: "account_id", Reason: "required"}
	}
	if t.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must be a non-negative magnitude"}
	}
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if !IsNormalizedDate(t.Date) {
		return &ValidationError{Field: "transaction_date", Reason: "must be a normalized YYYY-MM-DD date"}
	}
	if t.Recurring {
		if _, err := ParseFrequency(string(t.Frequency)); err != nil {
			return err
		}
		if !IsNormalizedDate(t.StartDate) {
			return &ValidationError{Field: "start_date", Reason: "must be a normalized YYYY-MM-DD date"}
		}
		if t.SeriesID == "" {
			return &ValidationError{Field: "series_id", Reason: "required for recurring transactions"}
		}
	}
	return nil
}
