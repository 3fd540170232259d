package engine_test

import (
	"testing"
	"time"

	"github.com/warp/allocation-tracker/engine"
)

func TestWithinRange_InclusiveBothEnds(t *testing.T) {
	start := date(2025, time.January, 10)
	end := date(2025, time.January, 20)

	tests := []struct {
		name string
		day  engine.Date
		want bool
	}{
		{"before start", date(2025, time.January, 9), false},
		{"on start", start, true},
		{"middle", date(2025, time.January, 15), true},
		{"on end", end, true},
		{"after end", date(2025, time.January, 21), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.WithinRange(tt.day, start, end); got != tt.want {
				t.Errorf("WithinRange(%s) = %v, want %v", tt.day, got, tt.want)
			}
		})
	}
}

func TestDateOf_NormalizesTimeOfDay(t *testing.T) {
	// Stored dates may carry time-of-day components; only the calendar day
	// matters.
	late := time.Date(2025, time.March, 10, 23, 45, 12, 999, time.UTC)
	early := time.Date(2025, time.March, 10, 0, 0, 1, 0, time.UTC)

	if !engine.DateOf(late).Equal(engine.DateOf(early)) {
		t.Error("same calendar day should compare equal regardless of time-of-day")
	}
}

func TestParseDate(t *testing.T) {
	d, err := engine.ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 10 {
		t.Errorf("parsed wrong date: %s", d)
	}

	if _, err := engine.ParseDate("10/03/2025"); err == nil {
		t.Error("expected error for non-ISO format")
	}
}

func TestDate_AddDays_CrossesMonthBoundary(t *testing.T) {
	d := date(2025, time.January, 31).AddDays(1)
	if d.Month() != time.February || d.Day() != 1 {
		t.Errorf("expected 2025-02-01, got %s", d)
	}
}

func TestDate_String(t *testing.T) {
	if got := date(2025, time.March, 5).String(); got != "2025-03-05" {
		t.Errorf("expected 2025-03-05, got %s", got)
	}
}
