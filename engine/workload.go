package engine

import (
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	hoursPerWeek  = decimal.NewFromInt(40)
	weeksPerMonth = decimal.NewFromInt(4)
)

// =============================================================================
// WORKLOAD
// =============================================================================

// MonthlyCapacity is the resource's assumed monthly working-hours ceiling:
// availability% x 40 hours x 4 weeks. The fixed 4-week model is deliberate -
// the system never counts actual weeks or business days in a month.
func MonthlyCapacity(resource Resource) decimal.Decimal {
	if resource.Availability <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(resource.Availability)).
		Div(hundred).
		Mul(hoursPerWeek).
		Mul(weeksPerMonth)
}

// WorkloadPercent derives the resource's utilization for today's calendar
// month: planned hours across its current-month allocations over monthly
// capacity, as a rounded integer percent. Zero capacity yields 0 rather than
// a division error. The result is not clamped; values above 100 mean
// over-allocation and are the caller's concern to flag.
func WorkloadPercent(resource Resource, allocations []Allocation, today Date) int {
	capacity := MonthlyCapacity(resource)
	if !capacity.IsPositive() {
		return 0
	}

	monthly := InMonth(ForResource(allocations, resource.ID), today.Year(), int(today.Month()))
	planned := sumField(monthly, FieldPlanned)

	pct := planned.Div(capacity).Mul(hundred).Round(0)
	return int(pct.IntPart())
}
