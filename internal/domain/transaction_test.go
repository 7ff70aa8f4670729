package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionTypeDelta(t *testing.T) {
	tests := []struct {
		name    string
		typ     TransactionType
		amount  float64
		want    float64
		wantErr bool
	}{
		{name: "income adds", typ: TransactionIncome, amount: 50, want: 50},
		{name: "expense subtracts", typ: TransactionExpense, amount: 20, want: -20},
		{name: "transfer is an outflow", typ: TransactionTransfer, amount: 75, want: -75},
		{name: "zero amount", typ: TransactionIncome, amount: 0, want: 0},
		{name: "unknown type", typ: "refund", amount: 10, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Delta(tt.amount)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Delta(%v) = %v, want error", tt.amount, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delta failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Delta(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestReversalDeltaUndoesDelta(t *testing.T) {
	for _, typ := range []TransactionType{TransactionIncome, TransactionExpense, TransactionTransfer} {
		d, err := typ.Delta(33.5)
		if err != nil {
			t.Fatalf("Delta(%s) failed: %v", typ, err)
		}
		r, err := typ.ReversalDelta(33.5)
		if err != nil {
			t.Fatalf("ReversalDelta(%s) failed: %v", typ, err)
		}
		if d+r != 0 {
			t.Errorf("%s: delta %v + reversal %v != 0", typ, d, r)
		}
	}
	if _, err := TransactionType("bogus").ReversalDelta(1); err == nil {
		t.Error("ReversalDelta on unknown type should fail")
	}
}

func TestParseTransactionType(t *testing.T) {
	got, err := ParseTransactionType("  Income ")
	if err != nil || got != TransactionIncome {
		t.Errorf("ParseTransactionType = %v, %v; want income", got, err)
	}
	if _, err := ParseTransactionType("loan"); !IsValidation(err) {
		t.Errorf("ParseTransactionType(loan) error = %v, want validation error", err)
	}
}

func TestParseFrequency(t *testing.T) {
	got, err := ParseFrequency("MONTHLY")
	if err != nil || got != FrequencyMonthly {
		t.Errorf("ParseFrequency = %v, %v; want monthly", got, err)
	}
	if _, err := ParseFrequency("weekly"); !IsValidation(err) {
		t.Errorf("ParseFrequency(weekly) error = %v, want validation error", err)
	}
}

func validTransaction() *Transaction {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return &Transaction{
		ID:        "tx-1",
		UserID:    "alice",
		AccountID: "acct-1",
		Amount:    12.50,
		Type:      TransactionExpense,
		Date:      "2025-05-01",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		field  string
	}{
		{name: "valid", mutate: func(tx *Transaction) {}},
		{name: "missing user", mutate: func(tx *Transaction) { tx.UserID = "" }, field: "user_id"},
		{name: "missing account", mutate: func(tx *Transaction) { tx.AccountID = "" }, field: "account_id"},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = -5 }, field: "amount"},
		{name: "bad type", mutate: func(tx *Transaction) { tx.Type = "loan" }, field: "transaction_type"},
		{name: "unnormalized date", mutate: func(tx *Transaction) { tx.Date = "05/01/2025" }, field: "transaction_date"},
		{
			name: "recurring without frequency",
			mutate: func(tx *Transaction) {
				tx.Recurring = true
				tx.SeriesID = "s-1"
				tx.StartDate = "2025-05-01"
			},
			field: "frequency",
		},
		{
			name: "recurring without series id",
			mutate: func(tx *Transaction) {
				tx.Recurring = true
				tx.Frequency = FrequencyMonthly
				tx.StartDate = "2025-05-01"
			},
			field: "series_id",
		},
		{
			name: "recurring with bad start date",
			mutate: func(tx *Transaction) {
				tx.Recurring = true
				tx.Frequency = FrequencyMonthly
				tx.SeriesID = "s-1"
				tx.StartDate = "soon"
			},
			field: "start_date",
		},
		{
			name: "recurring valid",
			mutate: func(tx *Transaction) {
				tx.Recurring = true
				tx.Frequency = FrequencyYearly
				tx.SeriesID = "s-1"
				tx.StartDate = "2024-05-01"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(tx)
			err := tx.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate failed: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Validate error field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}
