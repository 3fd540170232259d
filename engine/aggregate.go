package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOUR AGGREGATION
// =============================================================================

// HoursField selects which hour column an aggregation reads.
type HoursField string

const (
	FieldPlanned HoursField = "planned"
	FieldActual  HoursField = "actual"
)

func (f HoursField) of(a Allocation) decimal.Decimal {
	if f == FieldActual {
		return a.ActualHours
	}
	return a.PlannedHours
}

// RoundHours rounds a total to one decimal place, half up. Every monthly or
// weekly total surfaced to callers goes through this; intermediate sums do
// not.
func RoundHours(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// SumHours sums the selected field across the allocations and rounds the
// result to one decimal place.
func SumHours(allocations []Allocation, field HoursField) decimal.Decimal {
	return RoundHours(sumField(allocations, field))
}

func sumField(allocations []Allocation, field HoursField) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(field.of(a))
	}
	return total
}

// GroupByProject sums planned/actual hours per project id. Rounding happens
// after summation, independently per group.
func GroupByProject(allocations []Allocation) map[string]HoursBreakdown {
	groups := make(map[string]HoursBreakdown)
	for _, a := range allocations {
		g := groups[a.ProjectID]
		g.Planned = g.Planned.Add(a.PlannedHours)
		g.Actual = g.Actual.Add(a.ActualHours)
		groups[a.ProjectID] = g
	}
	return roundGroups(groups)
}

// GroupByWeek sums planned/actual hours per week number, rounding per group
// after summation.
func GroupByWeek(allocations []Allocation) map[int]HoursBreakdown {
	groups := make(map[int]HoursBreakdown)
	for _, a := range allocations {
		g := groups[a.Week]
		g.Planned = g.Planned.Add(a.PlannedHours)
		g.Actual = g.Actual.Add(a.ActualHours)
		groups[a.Week] = g
	}
	return roundGroups(groups)
}

func roundGroups[K comparable](groups map[K]HoursBreakdown) map[K]HoursBreakdown {
	for k, g := range groups {
		g.Planned = RoundHours(g.Planned)
		g.Actual = RoundHours(g.Actual)
		groups[k] = g
	}
	return groups
}

// =============================================================================
// FILTER HELPERS
// =============================================================================

// ForResource returns the allocations whose membership list contains the
// resource id.
func ForResource(allocations []Allocation, resourceID string) []Allocation {
	var out []Allocation
	for _, a := range allocations {
		if a.HasResource(resourceID) {
			out = append(out, a)
		}
	}
	return out
}

// InMonth returns the allocations for the given calendar year/month.
func InMonth(allocations []Allocation, year, month int) []Allocation {
	var out []Allocation
	for _, a := range allocations {
		if a.InMonth(year, month) {
			out = append(out, a)
		}
	}
	return out
}
