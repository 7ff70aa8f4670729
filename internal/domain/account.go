package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountType is the fixed set of supported bank account kinds.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
)

// ParseAccountType normalizes and validates an account type string.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToLower(strings.TrimSpace(s))) {
	case AccountChecking:
		return AccountChecking, nil
	case AccountSavings:
		return AccountSavings, nil
	case AccountCredit:
		return AccountCredit, nil
	case AccountInvestment:
		return AccountInvestment, nil
	default:
		return "", &ValidationError{Field: "account_type", Reason: fmt.Sprintf("unknown account type %q", s)}
	}
}

// Account is a bank account owned by a single user.
//
// Balance is mutated only through the ledger's versioned balance update;
// Version is the optimistic-concurrency token that update compares against.
// Accounts are never hard-deleted: Active=false marks a soft delete.
type Account struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"account_name"`
	Type      AccountType `json:"account_type"`
	Balance   float64     `json:"balance"`
	Version   int64       `json:"-"`
	Active    bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewAccount builds a validated account. A caller-supplied creation time in
// the future is clamped to the clock's now.
func NewAccount(id, userID, name string, typ AccountType, balance float64, createdAt time.Time, clock Clock) (*Account, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "account_name", Reason: "required"}
	}
	if _, err := ParseAccountType(string(typ)); err != nil {
		return nil, err
	}

	now := clock.Now()
	if createdAt.IsZero() || createdAt.After(now) {
		createdAt = now
	}

	return &Account{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Type:      typ,
		Balance:   balance,
		Version:   0,
		Active:    true,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}, nil
}
