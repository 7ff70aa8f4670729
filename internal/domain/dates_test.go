package domain

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "already normalized", in: "2025-03-15", want: "2025-03-15"},
		{name: "rfc3339", in: "2025-03-15T10:30:00Z", want: "2025-03-15"},
		{name: "datetime without zone", in: "2025-03-15T10:30:00", want: "2025-03-15"},
		{name: "datetime with space", in: "2025-03-15 10:30:00", want: "2025-03-15"},
		{name: "us slashes", in: "03/15/2025", want: "2025-03-15"},
		{name: "surrounding whitespace", in: "  2025-03-15  ", want: "2025-03-15"},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "not-a-date", wantErr: true},
		{name: "out of range day", in: "2025-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeDate(%q) = %q, want error", tt.in, got)
				}
				if !IsValidation(err) {
					t.Errorf("NormalizeDate(%q) error %v is not a validation error", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDate(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNormalizedDate(t *testing.T) {
	if !IsNormalizedDate("2025-01-31") {
		t.Error("2025-01-31 should be normalized")
	}
	for _, bad := range []string{"2025-1-31", "01/31/2025", "2025-01-31T00:00:00Z", ""} {
		if IsNormalizedDate(bad) {
			t.Errorf("%q should not count as normalized", bad)
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{name: "same month", start: date(2025, 3, 1), end: date(2025, 3, 28), want: 0},
		{name: "adjacent months ignore day", start: date(2025, 3, 31), end: date(2025, 4, 1), want: 1},
		{name: "across year boundary", start: date(2024, 11, 15), end: date(2025, 2, 15), want: 3},
		{name: "several years", start: date(2022, 6, 1), end: date(2025, 6, 1), want: 36},
		{name: "negative", start: date(2025, 5, 1), end: date(2025, 3, 1), want: -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("MonthsBetween(%v, %v) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{name: "plain step", in: date(2025, 3, 15), n: 1, want: date(2025, 4, 15)},
		{name: "jan 31 clamps to feb 28", in: date(2025, 1, 31), n: 1, want: date(2025, 2, 28)},
		{name: "jan 31 clamps to feb 29 leap", in: date(2024, 1, 31), n: 1, want: date(2024, 2, 29)},
		{name: "jan 31 two steps lands on mar 31", in: date(2025, 1, 31), n: 2, want: date(2025, 3, 31)},
		{name: "carries into next year", in: date(2025, 11, 30), n: 3, want: date(2026, 2, 28)},
		{name: "zero months", in: date(2025, 7, 4), n: 0, want: date(2025, 7, 4)},
		{name: "negative step", in: date(2025, 3, 31), n: -1, want: date(2025, 2, 28)},
		{name: "negative across year", in: date(2025, 1, 15), n: -2, want: date(2024, 11, 15)},
		{name: "many months", in: date(2025, 1, 31), n: 13, want: date(2026, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonthsClamped(tt.in, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddMonthsClamped(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestAddYearsClamped(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{name: "plain year", in: date(2025, 6, 15), n: 1, want: date(2026, 6, 15)},
		{name: "feb 29 clamps to feb 28", in: date(2024, 2, 29), n: 1, want: date(2025, 2, 28)},
		{name: "feb 29 to next leap year", in: date(2024, 2, 29), n: 4, want: date(2028, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddYearsClamped(tt.in, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddYearsClamped(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey("2025-03-15"); got != "2025-03" {
		t.Errorf("MonthKey = %q, want 2025-03", got)
	}
	if got := MonthKey("short"); got != "short" {
		t.Errorf("MonthKey on short input = %q, want it unchanged", got)
	}
}

func TestToday(t *testing.T) {
	clock := FixedClock{T: time.Date(2025, 8, 25, 23, 59, 0, 0, time.UTC)}
	if got := Today(clock); got != "2025-08-25" {
		t.Errorf("Today = %q, want 2025-08-25", got)
	}
}
