package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/allocation-tracker/engine"
)

func TestWorkloadPercent_FullTimeHalfAllocated(t *testing.T) {
	// GIVEN: Availability 100 (capacity 160h/month), one allocation this
	//        month with 80 planned hours
	// WHEN: Computing workload
	// THEN: round((80/160)*100) = 50

	today := date(2025, time.March, 10)
	r := engine.Resource{ID: "res-1", Availability: 100}
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 80, "res-1"),
	}

	assert.Equal(t, 50, engine.WorkloadPercent(r, allocations, today))
}

func TestWorkloadPercent_OverAllocated_NotClamped(t *testing.T) {
	// Availability 50 -> capacity 80h. 100 planned hours -> 125%. The
	// calculator reports over-allocation as-is; the UI flags it.
	today := date(2025, time.March, 10)
	r := engine.Resource{ID: "res-1", Availability: 50}
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 100, "res-1"),
	}

	assert.Equal(t, 125, engine.WorkloadPercent(r, allocations, today))
}

func TestWorkloadPercent_ZeroAvailability_Zero(t *testing.T) {
	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 40, "res-1"),
	}

	for _, availability := range []int{0, -10} {
		r := engine.Resource{ID: "res-1", Availability: availability}
		assert.Equal(t, 0, engine.WorkloadPercent(r, allocations, today),
			"availability %d should yield 0, not a division error", availability)
	}
}

func TestWorkloadPercent_IgnoresOtherMonths(t *testing.T) {
	today := date(2025, time.March, 10)
	r := engine.Resource{ID: "res-1", Availability: 100}
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 40, "res-1"),
		alloc("proj-2", 2025, 4, 1, 120, "res-1"), // next month, ignored
	}

	assert.Equal(t, 25, engine.WorkloadPercent(r, allocations, today))
}

func TestWorkloadPercent_MonotonicInPlannedHours(t *testing.T) {
	// Holding availability fixed, adding planned hours never decreases the
	// percentage.
	today := date(2025, time.March, 10)
	r := engine.Resource{ID: "res-1", Availability: 80}

	var allocations []engine.Allocation
	prev := 0
	for week := 1; week <= 5; week++ {
		allocations = append(allocations, alloc("proj-1", 2025, 3, week, 13.5, "res-1"))
		got := engine.WorkloadPercent(r, allocations, today)
		assert.GreaterOrEqual(t, got, prev, "workload decreased after adding hours")
		prev = got
	}
}

func TestWorkloadPercent_RoundsHalfUp(t *testing.T) {
	// Capacity 160, planned 100 -> 62.5% -> rounds to 63.
	today := date(2025, time.March, 10)
	r := engine.Resource{ID: "res-1", Availability: 100}
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 100, "res-1"),
	}

	assert.Equal(t, 63, engine.WorkloadPercent(r, allocations, today))
}

func TestMonthlyCapacity(t *testing.T) {
	tests := []struct {
		availability int
		want         string
	}{
		{100, "160"},
		{50, "80"},
		{75, "120"},
		{0, "0"},
		{-5, "0"},
	}
	for _, tt := range tests {
		got := engine.MonthlyCapacity(engine.Resource{Availability: tt.availability})
		assert.Equal(t, tt.want, got.String(), "availability %d", tt.availability)
	}
}
