package engine

import (
	"sort"
)

// =============================================================================
// STATUS RESOLUTION
// =============================================================================

// ResolveStatus classifies a resource as of today:
//
//   on_leave:  at least one leave record covers today. Highest precedence.
//   working:   not on leave, and at least one allocation for the current
//              calendar year/month lists the resource with plannedHours > 0.
//   available: neither of the above.
//
// Only allocations for today's year/month count; hours in other periods are
// ignored here even when non-zero. Empty inputs yield available.
func ResolveStatus(resource Resource, allocations []Allocation, leaves []Leave, today Date) ResourceStatus {
	if ActiveLeave(leaves, today) != nil {
		return StatusOnLeave
	}

	year, month := today.Year(), int(today.Month())
	for _, a := range allocations {
		if a.HasResource(resource.ID) && a.InMonth(year, month) && a.PlannedHours.IsPositive() {
			return StatusWorking
		}
	}
	return StatusAvailable
}

// ActiveLeave returns the first leave covering today, or nil.
func ActiveLeave(leaves []Leave, today Date) *Leave {
	for i := range leaves {
		if leaves[i].ActiveOn(today) {
			return &leaves[i]
		}
	}
	return nil
}

// UpcomingLeaves returns the leaves starting strictly after today, ordered
// by start date.
func UpcomingLeaves(leaves []Leave, today Date) []Leave {
	var upcoming []Leave
	for _, l := range leaves {
		if l.UpcomingOn(today) {
			upcoming = append(upcoming, l)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})
	return upcoming
}
