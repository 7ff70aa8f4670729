package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/analytics"
	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/ledger"
	"github.com/panduhzz/FinancialTracker/internal/logger"
	"github.com/panduhzz/FinancialTracker/internal/recurring"
	"github.com/panduhzz/FinancialTracker/internal/store/memory"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func newService(t *testing.T, now time.Time) *Service {
	t.Helper()
	accounts := memory.NewAccountStore()
	transactions := memory.NewTransactionStore()
	log := logger.NewWithWriter(testWriter{t})
	clock := domain.FixedClock{T: now}
	led := ledger.New(accounts, log)
	mat := recurring.New(accounts, transactions, led, clock, log)
	agg := analytics.New(accounts, transactions, clock)
	return NewService(accounts, transactions, led, mat, agg, clock, log)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBalanceFollowsTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))

	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking", Balance: 0})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 50, Type: "income", Date: "2025-06-01", Description: "salary",
	}); err != nil {
		t.Fatalf("CreateTransaction income failed: %v", err)
	}
	expense, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 20, Type: "expense", Date: "2025-06-02", Description: "groceries",
	})
	if err != nil {
		t.Fatalf("CreateTransaction expense failed: %v", err)
	}

	got, err := svc.GetAccount(ctx, "alice", acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Balance != 30 {
		t.Errorf("balance = %v, want 30 (0 + 50 - 20)", got.Balance)
	}

	if err := svc.DeleteTransaction(ctx, "alice", expense.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}
	got, err = svc.GetAccount(ctx, "alice", acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Balance != 50 {
		t.Errorf("balance after delete = %v, want 50", got.Balance)
	}

	if _, err := svc.GetTransaction(ctx, "alice", expense.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted transaction lookup = %v, want ErrNotFound", err)
	}
}

func TestCreateThenDeleteIsANoOp(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))

	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking", Balance: 123.25})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	tx, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 67.5, Type: "transfer", Date: "2025-06-10",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "alice", tx.ID); err != nil {
		t.Fatalf("DeleteTransaction failed: %v", err)
	}

	got, err := svc.GetAccount(ctx, "alice", acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Balance != 123.25 {
		t.Errorf("balance = %v, want the original 123.25", got.Balance)
	}
	txs, err := svc.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("transactions = %d, want none", len(txs))
	}
}

func TestRecurringCreationBackfillsHistory(t *testing.T) {
	ctx := context.Background()
	// Created on 2025-06-20 with a start three months back: the original
	// row plus backfilled rows for the three following anniversaries.
	svc := newService(t, date(2025, 6, 20))

	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking", Balance: 0})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	tx, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 10, Type: "expense", Date: "2025-03-15",
		Recurring: true, Frequency: "monthly", Description: "subscription",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.SeriesID == "" || tx.StartDate != "2025-03-15" {
		t.Fatalf("recurring transaction missing series fields: %+v", tx)
	}

	txs, err := svc.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 4 {
		t.Fatalf("rows = %d, want 4 (original + 3 backfilled)", len(txs))
	}
	wantDates := []string{"2025-03-15", "2025-04-15", "2025-05-15", "2025-06-15"}
	for i, tx := range txs {
		if tx.Date != wantDates[i] {
			t.Errorf("txs[%d].Date = %s, want %s", i, tx.Date, wantDates[i])
		}
	}

	got, err := svc.GetAccount(ctx, "alice", acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Balance != -40 {
		t.Errorf("balance = %v, want -40 after four 10.00 expenses", got.Balance)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))
	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking"})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	tests := []struct {
		name string
		in   CreateTransactionInput
	}{
		{name: "bad date", in: CreateTransactionInput{AccountID: acc.ID, Amount: 5, Type: "income", Date: "someday"}},
		{name: "bad type", in: CreateTransactionInput{AccountID: acc.ID, Amount: 5, Type: "loan", Date: "2025-06-01"}},
		{name: "negative amount", in: CreateTransactionInput{AccountID: acc.ID, Amount: -5, Type: "income", Date: "2025-06-01"}},
		{name: "recurring without frequency", in: CreateTransactionInput{AccountID: acc.ID, Amount: 5, Type: "income", Date: "2025-06-01", Recurring: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTransaction(ctx, "alice", tt.in); !domain.IsValidation(err) {
				t.Errorf("CreateTransaction error = %v, want validation error", err)
			}
		})
	}

	t.Run("missing account", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
			AccountID: "ghost", Amount: 5, Type: "income", Date: "2025-06-01",
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("CreateTransaction error = %v, want ErrNotFound", err)
		}
	})
}

func TestCreateTransactionNormalizesDates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))
	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking"})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	tx, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 5, Type: "income", Date: "2025-06-01T22:15:00Z",
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if tx.Date != "2025-06-01" {
		t.Errorf("Date = %q, want normalized 2025-06-01", tx.Date)
	}
}

func TestDeleteAccountIsSoft(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))

	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking", Balance: 10})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := svc.DeleteAccount(ctx, "alice", acc.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// Gone from listings, still retrievable.
	listed, err := svc.ListAccounts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("listed accounts = %d, want 0", len(listed))
	}
	got, err := svc.GetAccount(ctx, "alice", acc.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if got.Active {
		t.Error("soft-deleted account should be inactive")
	}
}

func TestListAccountsFirstTimeUser(t *testing.T) {
	svc := newService(t, date(2025, 6, 20))
	accounts, err := svc.ListAccounts(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if accounts == nil || len(accounts) != 0 {
		t.Errorf("first-time user should get an empty slice, got %v", accounts)
	}
}

func TestListRecurringSeries(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))
	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking"})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 10, Type: "expense", Date: "2025-04-15",
		Recurring: true, Frequency: "monthly", Description: "subscription",
	}); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 3, Type: "expense", Date: "2025-06-18",
	}); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	series, err := svc.ListRecurringSeries(ctx, "alice")
	if err != nil {
		t.Fatalf("ListRecurringSeries failed: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("series = %d, want 1", len(series))
	}

	s := series[0]
	if s.Frequency != domain.FrequencyMonthly || s.Amount != 10 || s.StartDate != "2025-04-15" {
		t.Errorf("series summary = %+v", s)
	}
	wantDates := []string{"2025-04-15", "2025-05-15", "2025-06-15"}
	if len(s.Dates) != len(wantDates) {
		t.Fatalf("occurrence dates = %v, want %v", s.Dates, wantDates)
	}
	for i, d := range s.Dates {
		if d != wantDates[i] {
			t.Errorf("Dates[%d] = %s, want %s", i, d, wantDates[i])
		}
	}
	if s.NextDate != "2025-07-15" {
		t.Errorf("NextDate = %s, want 2025-07-15", s.NextDate)
	}
}

func TestMonthlySummariesThroughService(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, date(2025, 6, 20))
	acc, err := svc.CreateAccount(ctx, "alice", CreateAccountInput{Name: "Everyday", Type: "checking"})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, "alice", CreateTransactionInput{
		AccountID: acc.ID, Amount: 200, Type: "income", Date: "2025-06-01",
	}); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	summaries, err := svc.MonthlySummaries(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("MonthlySummaries failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2", len(summaries))
	}
	if summaries[1].Month != "2025-06" || summaries[1].Income != 200 {
		t.Errorf("June summary = %+v", summaries[1])
	}
}
