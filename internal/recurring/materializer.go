// Package recurring turns recurring-transaction templates into concrete
// dated occurrences: retroactively when a series is created (backfill) and
// prospectively once per day (the due-set job).
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/panduhzz/FinancialTracker/internal/domain"
	"github.com/panduhzz/FinancialTracker/internal/ledger"
	"github.com/panduhzz/FinancialTracker/internal/metrics"
	"github.com/panduhzz/FinancialTracker/internal/store"
)

// Materializer creates transaction occurrences from recurring series.
type Materializer struct {
	accounts     store.AccountRepository
	transactions store.TransactionRepository
	ledger       *ledger.Ledger
	clock        domain.Clock
	log          zerolog.Logger
}

// New creates a Materializer.
func New(accounts store.AccountRepository, transactions store.TransactionRepository, led *ledger.Ledger, clock domain.Clock, log zerolog.Logger) *Materializer {
	return &Materializer{
		accounts:     accounts,
		transactions: transactions,
		ledger:       led,
		clock:        clock,
		log:          log,
	}
}

// Report summarizes one daily run. Per-template failures are isolated and
// counted; they never abort the batch.
type Report struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ShouldCreateToday reports whether a series with the given start date and
// frequency is due on today's date.
//
// Monthly: due when today's day-of-month equals the start day and today is
// not before the start month. Yearly: due on the start's month/day in any
// year at or after the start year. An unknown frequency is never due; that
// is a defensive default, not an error.
func ShouldCreateToday(start time.Time, freq domain.Frequency, today time.Time) bool {
	switch freq {
	case domain.FrequencyMonthly:
		return today.Day() == start.Day() && domain.MonthsBetween(start, today) >= 0
	case domain.FrequencyYearly:
		return today.Month() == start.Month() &&
			today.Day() == start.Day() &&
			today.Year() >= start.Year()
	default:
		return false
	}
}

// BackfillDates returns the historical occurrence dates of a series between
// its start date (exclusive) and now (inclusive), in order. The start date
// itself is excluded because the originating transaction already covers it.
//
// Monthly series step month by month preserving the start's day-of-month,
// clamped to the last day of shorter months. Yearly series step year by
// year with the same clamping. A start in the future, or in the current
// period, yields nothing.
func BackfillDates(start time.Time, freq domain.Frequency, now time.Time) []time.Time {
	if start.After(now) {
		return nil
	}

	var steps int
	var advance func(int) time.Time
	switch freq {
	case domain.FrequencyMonthly:
		steps = domain.MonthsBetween(start, now)
		advance = func(i int) time.Time { return domain.AddMonthsClamped(start, i) }
	case domain.FrequencyYearly:
		steps = now.Year() - start.Year()
		advance = func(i int) time.Time { return domain.AddYearsClamped(start, i) }
	default:
		return nil
	}
	if steps <= 0 {
		return nil
	}

	dates := make([]time.Time, 0, steps)
	for i := 1; i <= steps; i++ {
		occ := advance(i)
		if occ.After(now) {
			break
		}
		dates = append(dates, occ)
	}
	return dates
}

// Backfill creates the historical occurrences of a freshly created recurring
// transaction and applies their ledger deltas. It returns how many rows it
// created. The caller's originating transaction is never touched: a backfill
// failure is reported through the error but must not roll it back.
func (m *Materializer) Backfill(ctx context.Context, template *domain.Transaction) (int, error) {
	if !template.Recurring {
		return 0, fmt.Errorf("Backfill: transaction %s is not recurring", template.ID)
	}
	start, err := domain.ParseDate(template.StartDate)
	if err != nil {
		return 0, fmt.Errorf("Backfill: series %s: %w", template.SeriesID, err)
	}

	created := 0
	for _, occ := range BackfillDates(start, template.Frequency, m.clock.Now()) {
		if err := m.createOccurrence(ctx, template, occ.Format(domain.DateLayout)); err != nil {
			return created, fmt.Errorf("Backfill: series %s at %s: %w",
				template.SeriesID, occ.Format(domain.DateLayout), err)
		}
		created++
	}
	return created, nil
}

// RunDaily computes the due set for the clock's current date and creates one
// occurrence per due series. Re-running on the same day creates nothing: the
// idempotency guard skips any series that already has a recurring row on
// today's date beyond the template itself.
func (m *Materializer) RunDaily(ctx context.Context) Report {
	today := domain.Today(m.clock)
	log := m.log.With().Str("today", today).Logger()

	var report Report
	rows, err := m.transactions.ScanRecurring(ctx)
	if err != nil {
		log.Error().Err(err).Msg("daily job: scanning recurring transactions failed")
		report.Failed++
		return report
	}

	for _, tpl := range templatesBySeries(rows) {
		ok, err := m.materializeForToday(ctx, tpl, rows, today)
		if err != nil {
			// Isolated: one failing series must not stop the rest.
			metrics.RecurringFailed.Inc()
			report.Failed++
			log.Error().Err(err).
				Str("series_id", tpl.SeriesID).
				Str("account_id", tpl.AccountID).
				Msg("daily job: series failed")
			continue
		}
		if ok {
			metrics.RecurringCreated.Inc()
			report.Created++
		}
	}

	log.Info().
		Int("created", report.Created).
		Int("failed", report.Failed).
		Msg("daily job: finished")
	return report
}

// materializeForToday creates today's occurrence for one series if it is due
// and not already present. Returns whether a row was created.
func (m *Materializer) materializeForToday(ctx context.Context, tpl *domain.Transaction, all []*domain.Transaction, today string) (bool, error) {
	start, err := domain.ParseDate(tpl.StartDate)
	if err != nil {
		return false, fmt.Errorf("series %s: %w", tpl.SeriesID, err)
	}
	todayDate, err := domain.ParseDate(today)
	if err != nil {
		return false, err
	}
	if !ShouldCreateToday(start, tpl.Frequency, todayDate) {
		return false, nil
	}

	// Idempotency guard: a recurring row for this owner and account already
	// dated today, other than the template row itself, means this run (or an
	// earlier one) has been here.
	for _, other := range all {
		if other.ID == tpl.ID {
			continue
		}
		if other.UserID == tpl.UserID &&
			other.AccountID == tpl.AccountID &&
			other.SeriesID == tpl.SeriesID &&
			other.Date == today {
			return false, nil
		}
	}

	// Soft-deleted accounts are not excluded from the due set; surface the
	// situation instead of silently changing behavior.
	if acc, err := m.accounts.Get(ctx, tpl.UserID, tpl.AccountID); err == nil && !acc.Active {
		m.log.Warn().
			Str("series_id", tpl.SeriesID).
			Str("account_id", tpl.AccountID).
			Msg("daily job: materializing onto a soft-deleted account")
	}

	if err := m.createOccurrence(ctx, tpl, today); err != nil {
		return false, fmt.Errorf("series %s: %w", tpl.SeriesID, err)
	}
	return true, nil
}

// createOccurrence persists one occurrence of the series on the given date
// and applies its ledger delta.
func (m *Materializer) createOccurrence(ctx context.Context, tpl *domain.Transaction, date string) error {
	now := m.clock.Now()
	occ := &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      tpl.UserID,
		AccountID:   tpl.AccountID,
		Amount:      tpl.Amount,
		Description: tpl.Description,
		Category:    tpl.Category,
		Type:        tpl.Type,
		Date:        date,
		Recurring:   true,
		SeriesID:    tpl.SeriesID,
		Frequency:   tpl.Frequency,
		StartDate:   tpl.StartDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.transactions.Put(ctx, occ); err != nil {
		return fmt.Errorf("createOccurrence: persisting occurrence: %w", err)
	}
	if err := m.ledger.Apply(ctx, occ.UserID, occ.AccountID, occ.Amount, occ.Type); err != nil {
		return fmt.Errorf("createOccurrence: applying ledger delta: %w", err)
	}
	return nil
}

// templatesBySeries collapses the recurring scan down to one representative
// row per series: the row dated on the series start if present, otherwise
// the earliest occurrence. Occurrences all carry the series metadata, so any
// row could serve; picking deterministically keeps the job stable.
func templatesBySeries(rows []*domain.Transaction) []*domain.Transaction {
	bySeries := make(map[string]*domain.Transaction)
	var order []string
	for _, tx := range rows {
		if tx.SeriesID == "" {
			continue
		}
		cur, ok := bySeries[tx.SeriesID]
		if !ok {
			bySeries[tx.SeriesID] = tx
			order = append(order, tx.SeriesID)
			continue
		}
		if tx.Date == tx.StartDate || (cur.Date != cur.StartDate && tx.Date < cur.Date) {
			bySeries[tx.SeriesID] = tx
		}
	}
	result := make([]*domain.Transaction, 0, len(bySeries))
	for _, id := range order {
		result = append(result, bySeries[id])
	}
	return result
}

// NextOccurrence returns the expected date of the next occurrence after the
// last recorded one: one month or one year later depending on frequency,
// with the usual end-of-month clamping.
func NextOccurrence(lastDate string, freq domain.Frequency) (string, error) {
	last, err := domain.ParseDate(lastDate)
	if err != nil {
		return "", fmt.Errorf("NextOccurrence: %w", err)
	}
	switch freq {
	case domain.FrequencyMonthly:
		return domain.AddMonthsClamped(last, 1).Format(domain.DateLayout), nil
	case domain.FrequencyYearly:
		return domain.AddYearsClamped(last, 1).Format(domain.DateLayout), nil
	default:
		return "", fmt.Errorf("NextOccurrence: unknown frequency %q", string(freq))
	}
}
