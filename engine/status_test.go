package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/allocation-tracker/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y int, m time.Month, d int) engine.Date {
	return engine.NewDate(y, m, d)
}

func hours(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func alloc(projectID string, year, month, week int, planned float64, resourceIDs ...string) engine.Allocation {
	return engine.Allocation{
		ID:           projectID + "-a",
		ProjectID:    projectID,
		RoleID:       "role-dev",
		ResourceIDs:  resourceIDs,
		Year:         year,
		Month:        month,
		Week:         week,
		PlannedHours: hours(planned),
	}
}

func leave(resourceID string, start, end engine.Date) engine.Leave {
	return engine.Leave{
		ID:         "leave-1",
		ResourceID: resourceID,
		LeaveType:  engine.DefaultLeaveType,
		StartDate:  start,
		EndDate:    end,
	}
}

var testResource = engine.Resource{
	ID:           "res-1",
	Code:         "R001",
	Name:         "Dana",
	Availability: 100,
	IsActive:     true,
}

// =============================================================================
// STATUS RESOLUTION
// =============================================================================

func TestResolveStatus_ActiveLeave_TakesPrecedenceOverAllocations(t *testing.T) {
	// GIVEN: A leave covering today AND a current-month allocation with hours
	// WHEN: Resolving status
	// THEN: on_leave wins regardless of allocation data

	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 40, "res-1"),
	}
	leaves := []engine.Leave{
		leave("res-1", date(2025, time.March, 8), date(2025, time.March, 12)),
	}

	got := engine.ResolveStatus(testResource, allocations, leaves, today)
	if got != engine.StatusOnLeave {
		t.Errorf("expected on_leave, got %s", got)
	}
}

func TestResolveStatus_CurrentMonthAllocation_Working(t *testing.T) {
	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 2, 16, "res-1", "res-2"),
	}

	got := engine.ResolveStatus(testResource, allocations, nil, today)
	if got != engine.StatusWorking {
		t.Errorf("expected working, got %s", got)
	}
}

func TestResolveStatus_NoCurrentMonthAllocations_Available(t *testing.T) {
	// Allocations exist but for other periods - they must be ignored even
	// with non-zero hours.
	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 2, 4, 40, "res-1"), // last month
		alloc("proj-2", 2024, 3, 1, 40, "res-1"), // same month, last year
	}

	got := engine.ResolveStatus(testResource, allocations, nil, today)
	if got != engine.StatusAvailable {
		t.Errorf("expected available, got %s", got)
	}
}

func TestResolveStatus_ZeroPlannedHours_Available(t *testing.T) {
	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 0, "res-1"),
	}

	got := engine.ResolveStatus(testResource, allocations, nil, today)
	if got != engine.StatusAvailable {
		t.Errorf("expected available for zero planned hours, got %s", got)
	}
}

func TestResolveStatus_NotAMember_Available(t *testing.T) {
	today := date(2025, time.March, 10)
	allocations := []engine.Allocation{
		alloc("proj-1", 2025, 3, 1, 40, "res-other"),
	}

	got := engine.ResolveStatus(testResource, allocations, nil, today)
	if got != engine.StatusAvailable {
		t.Errorf("expected available for non-member, got %s", got)
	}
}

func TestResolveStatus_EmptyInputs_Available(t *testing.T) {
	got := engine.ResolveStatus(testResource, nil, nil, date(2025, time.March, 10))
	if got != engine.StatusAvailable {
		t.Errorf("expected available for empty inputs, got %s", got)
	}
}

// =============================================================================
// LEAVE BOUNDARIES
// =============================================================================

func TestLeave_SingleDay_ActiveExactlyThatDay(t *testing.T) {
	// A leave with startDate == endDate == today is active today and not
	// upcoming.
	today := date(2025, time.June, 15)
	l := leave("res-1", today, today)

	if !l.ActiveOn(today) {
		t.Error("single-day leave should be active on its day")
	}
	if l.UpcomingOn(today) {
		t.Error("single-day leave today should not be upcoming")
	}
	if l.ActiveOn(today.AddDays(-1)) || l.ActiveOn(today.AddDays(1)) {
		t.Error("single-day leave should not be active on adjacent days")
	}
}

func TestLeave_StartingTomorrow_UpcomingNotActive(t *testing.T) {
	today := date(2025, time.June, 15)
	l := leave("res-1", today.AddDays(1), today.AddDays(5))

	if l.ActiveOn(today) {
		t.Error("leave starting tomorrow should not be active today")
	}
	if !l.UpcomingOn(today) {
		t.Error("leave starting tomorrow should be upcoming")
	}
}

func TestLeave_InclusiveEndpoints(t *testing.T) {
	start := date(2025, time.June, 10)
	end := date(2025, time.June, 20)
	l := leave("res-1", start, end)

	if !l.ActiveOn(start) {
		t.Error("leave should be active on its start date")
	}
	if !l.ActiveOn(end) {
		t.Error("leave should be active on its end date")
	}
}

func TestActiveLeave_ReturnsCoveringLeave(t *testing.T) {
	today := date(2025, time.June, 15)
	leaves := []engine.Leave{
		{ID: "past", ResourceID: "res-1", StartDate: date(2025, time.June, 1), EndDate: date(2025, time.June, 3)},
		{ID: "now", ResourceID: "res-1", StartDate: date(2025, time.June, 14), EndDate: date(2025, time.June, 16)},
	}

	got := engine.ActiveLeave(leaves, today)
	if got == nil || got.ID != "now" {
		t.Fatalf("expected leave 'now', got %+v", got)
	}
}

func TestUpcomingLeaves_SortedByStart(t *testing.T) {
	today := date(2025, time.June, 15)
	leaves := []engine.Leave{
		{ID: "b", StartDate: date(2025, time.August, 1), EndDate: date(2025, time.August, 5)},
		{ID: "past", StartDate: date(2025, time.May, 1), EndDate: date(2025, time.May, 2)},
		{ID: "a", StartDate: date(2025, time.July, 1), EndDate: date(2025, time.July, 5)},
	}

	got := engine.UpcomingLeaves(leaves, today)
	if len(got) != 2 {
		t.Fatalf("expected 2 upcoming leaves, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected [a b] order, got [%s %s]", got[0].ID, got[1].ID)
	}
}
