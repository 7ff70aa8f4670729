package domain

import (
	"testing"
	"time"
)

func TestNewAccount(t *testing.T) {
	now := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
	clock := FixedClock{T: now}

	t.Run("valid", func(t *testing.T) {
		acc, err := NewAccount("a-1", "alice", "  Everyday  ", AccountChecking, 100, time.Time{}, clock)
		if err != nil {
			t.Fatalf("NewAccount failed: %v", err)
		}
		if acc.Name != "Everyday" {
			t.Errorf("Name = %q, want trimmed", acc.Name)
		}
		if !acc.Active || acc.Version != 0 {
			t.Errorf("new account should be active at version 0, got active=%v version=%d", acc.Active, acc.Version)
		}
		if !acc.CreatedAt.Equal(now) {
			t.Errorf("zero CreatedAt should default to now, got %v", acc.CreatedAt)
		}
	})

	t.Run("future created_at clamps to now", func(t *testing.T) {
		acc, err := NewAccount("a-1", "alice", "Everyday", AccountSavings, 0, now.Add(48*time.Hour), clock)
		if err != nil {
			t.Fatalf("NewAccount failed: %v", err)
		}
		if !acc.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want clamped to %v", acc.CreatedAt, now)
		}
	})

	t.Run("past created_at preserved", func(t *testing.T) {
		past := now.AddDate(-1, 0, 0)
		acc, err := NewAccount("a-1", "alice", "Everyday", AccountCredit, 0, past, clock)
		if err != nil {
			t.Fatalf("NewAccount failed: %v", err)
		}
		if !acc.CreatedAt.Equal(past) {
			t.Errorf("CreatedAt = %v, want %v", acc.CreatedAt, past)
		}
	})

	t.Run("invalid inputs", func(t *testing.T) {
		if _, err := NewAccount("a-1", "", "Everyday", AccountChecking, 0, time.Time{}, clock); !IsValidation(err) {
			t.Errorf("missing user: err = %v, want validation error", err)
		}
		if _, err := NewAccount("a-1", "alice", "   ", AccountChecking, 0, time.Time{}, clock); !IsValidation(err) {
			t.Errorf("blank name: err = %v, want validation error", err)
		}
		if _, err := NewAccount("a-1", "alice", "Everyday", "offshore", 0, time.Time{}, clock); !IsValidation(err) {
			t.Errorf("bad type: err = %v, want validation error", err)
		}
	})
}
