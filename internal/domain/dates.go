package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the single stored form for calendar dates.
const DateLayout = "2006-01-02"

// dateInputLayouts are the formats accepted at the ingestion boundary.
// Whatever comes in, only the calendar date survives; time-of-day is
// stripped so month bucketing cannot shift across timezones.
var dateInputLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// NormalizeDate parses an incoming date string and returns it as YYYY-MM-DD.
// This is the only place date formats are interpreted; every stored date has
// already passed through it.
func NormalizeDate(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &ValidationError{Field: "date", Reason: "required"}
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("unrecognized date %q", s)}
}

// IsNormalizedDate reports whether s is already in stored YYYY-MM-DD form.
func IsNormalizedDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// ParseDate parses a stored YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: parsing %q: %w", s, err)
	}
	return t, nil
}

// MonthsBetween returns the number of whole calendar-month steps from start
// to end, ignoring the day of month: (end.year-start.year)*12 +
// (end.month-start.month). Negative when end's month precedes start's.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// AddMonthsClamped adds n months to t keeping t's day-of-month, clamping to
// the last day of the target month when that day does not exist there
// (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap year). time.Time.AddDate
// would overflow into the next month instead, which is why this exists.
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month := t.Year(), int(t.Month())+n
	// Normalize month into 1..12, carrying into the year.
	year += (month - 1) / 12
	month = (month-1)%12 + 1
	if month <= 0 {
		month += 12
		year--
	}
	day := t.Day()
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, t.Location())
}

// AddYearsClamped adds n years to t, clamping Feb 29 to Feb 28 on non-leap
// target years.
func AddYearsClamped(t time.Time, n int) time.Time {
	year := t.Year() + n
	day := t.Day()
	if last := daysInMonth(year, t.Month()); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthKey returns the YYYY-MM bucket for a normalized date.
func MonthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
