// Package analytics produces the chart-facing aggregates: monthly
// income/expense buckets, reconstructed balance history and axis scaling.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// MonthlySummary is one YYYY-MM bucket of transaction totals.
type MonthlySummary struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
	Count   int     `json:"count"`
}

// MonthPoint is the reconstructed end-of-month state of a user's accounts.
type MonthPoint struct {
	Month    string             `json:"month"`
	Accounts map[string]float64 `json:"accounts"`
	NetWorth float64            `json:"net_worth"`
}

// Aggregator reconstructs historical balances from current state. Results
// are memoized per month; writes invalidate the cache from the affected
// month forward so only stale months are recomputed.
type Aggregator struct {
	accounts     store.AccountRepository
	transactions store.TransactionRepository
	clock        domain.Clock

	mu    sync.Mutex
	cache map[string]map[string]*MonthPoint // userID -> month -> point
}

// New creates an Aggregator.
func New(accounts store.AccountRepository, transactions store.TransactionRepository, clock domain.Clock) *Aggregator {
	return &Aggregator{
		accounts:     accounts,
		transactions: transactions,
		clock:        clock,
		cache:        make(map[string]map[string]*MonthPoint),
	}
}

// Invalidate drops the user's cached months. Called on every transaction or
// account write. Every cached month is derived from the account's current
// balance, so any write stales the whole set; months are then recomputed
// lazily on the next read.
func (a *Aggregator) Invalidate(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cache, userID)
}

// BalanceHistory reconstructs, for each of the trailing months (oldest to
// newest, including the current month), every account's end-of-month balance
// and the aggregate net worth.
//
// The reconstruction starts from each account's current balance and undoes
// every transaction dated strictly after the target month: income amounts
// are subtracted, expense and transfer amounts added back. Accounts created
// after the target month are excluded from that month's figures.
func (a *Aggregator) BalanceHistory(ctx context.Context, userID string, months int) ([]*MonthPoint, error) {
	if months <= 0 {
		return nil, fmt.Errorf("BalanceHistory: months must be positive, got %d", months)
	}

	accounts, err := a.accounts.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("BalanceHistory: listing accounts: %w", err)
	}
	txs, err := a.transactions.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("BalanceHistory: listing transactions: %w", err)
	}

	byAccount := make(map[string][]*domain.Transaction)
	for _, tx := range txs {
		byAccount[tx.AccountID] = append(byAccount[tx.AccountID], tx)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cache[userID] == nil {
		a.cache[userID] = make(map[string]*MonthPoint)
	}

	now := a.clock.Now()
	points := make([]*MonthPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthKey := monthStart.Format("2006-01")

		if cached, ok := a.cache[userID][monthKey]; ok {
			points = append(points, cached)
			continue
		}

		point := &MonthPoint{Month: monthKey, Accounts: make(map[string]float64)}
		for _, acc := range accounts {
			if !acc.Active {
				continue
			}
			if acc.CreatedAt.Format("2006-01") > monthKey {
				// Account did not exist yet in this month.
				continue
			}
			bal := reconstructBalance(acc.Balance, byAccount[acc.ID], monthKey)
			point.Accounts[acc.ID] = bal
			point.NetWorth += bal
		}
		a.cache[userID][monthKey] = point
		points = append(points, point)
	}
	return points, nil
}

// reconstructBalance walks backward from the current balance, undoing every
// transaction dated strictly after the target month.
func reconstructBalance(current float64, txs []*domain.Transaction, monthKey string) float64 {
	bal := current
	for _, tx := range txs {
		if domain.MonthKey(tx.Date) <= monthKey {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			bal -= tx.Amount
		case domain.TransactionExpense, domain.TransactionTransfer:
			bal += tx.Amount
		}
	}
	return bal
}

// MonthlySummaries buckets transactions into the trailing months (oldest to
// newest, current month included) by the YYYY-MM prefix of their dates.
// Months without transactions still appear, zeroed.
func MonthlySummaries(txs []*domain.Transaction, months int, clock domain.Clock) []MonthlySummary {
	if months <= 0 {
		return nil
	}
	buckets := make(map[string]*MonthlySummary)
	now := clock.Now()

	result := make([]MonthlySummary, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0).Format("2006-01")
		result = append(result, MonthlySummary{Month: key})
		buckets[key] = &result[len(result)-1]
	}

	for _, tx := range txs {
		b, ok := buckets[domain.MonthKey(tx.Date)]
		if !ok {
			continue
		}
		b.Count++
		switch tx.Type {
		case domain.TransactionIncome:
			b.Income += tx.Amount
			b.Net += tx.Amount
		case domain.TransactionExpense, domain.TransactionTransfer:
			b.Expense += tx.Amount
			b.Net -= tx.Amount
		}
	}
	return result
}

// AxisScale derives a chart axis from a value range: a rounding interval
// picked from fixed thresholds, and the min/max expanded outward to the
// next interval boundary.
func AxisScale(min, max float64) (interval, lo, hi float64) {
	span := max - min
	switch {
	case span <= 500:
		interval = 50
	case span <= 1000:
		interval = 100
	case span <= 5000:
		interval = 500
	default:
		interval = 1000
	}
	lo = math.Floor(min/interval) * interval
	hi = math.Ceil(max/interval) * interval
	return interval, lo, hi
}
