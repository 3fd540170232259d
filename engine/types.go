/*
Package engine provides the core resource-state derivation logic.

PURPOSE:
  This package contains the pure functions that derive a resource's current
  state from its allocations and leave records: status classification
  (available / working / on_leave), workload percentage against capacity,
  current-project summaries, and the hour aggregations behind the dashboards.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource: A person/contractor assignable to projects
  - Allocation: Planned/actual hours for a project+role in a year/month/week
  - Leave: A date range during which a resource is unavailable
  - Project/Role/Status/Flag: Lookup entities consumed by read-paths

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clock reads - "today" is always an explicit parameter
  2. Precision: Uses decimal.Decimal for hours to avoid floating-point drift
  3. Totality: Every function is defined over empty inputs and zero capacity
  4. Freshness: Derived values are never stored; callers recompute per read

USAGE:
  today := engine.Today()
  status := engine.ResolveStatus(resource, allocations, leaves, today)
  pct := engine.WorkloadPercent(resource, allocations, today)

SEE ALSO:
  - date.go: Day-granularity date handling and range checks
  - aggregate.go: Hour summation and grouping
  - status.go: Status resolution and leave lookups
  - workload.go: Capacity and utilization
  - projects.go: Current-project summaries
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOURCE - A person assignable to projects
// =============================================================================

type Resource struct {
	ID             string
	Code           string
	Name           string
	Email          string
	RoleID         string
	Specialization string

	// Availability is the percent of a full-time week this person is
	// available (0-100). Out-of-range values are tolerated: a zero or
	// negative availability yields a zero workload denominator.
	Availability int

	IsActive bool
}

// =============================================================================
// ALLOCATION - Hours assigned to a project+role for a year/month/week
// =============================================================================

// Allocation carries resource membership as an embedded id list rather than
// a join table. One row exists per (project, role, year, month, week) - the
// store enforces that, not this package.
type Allocation struct {
	ID          string
	ProjectID   string
	RoleID      string
	ResourceIDs []string
	Year        int
	Month       int // 1-12
	Week        int
	PlannedHours decimal.Decimal
	ActualHours  decimal.Decimal
	Notes        string
}

// HasResource reports whether the resource id appears in the allocation's
// membership list.
func (a Allocation) HasResource(resourceID string) bool {
	for _, id := range a.ResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}

// InMonth reports whether the allocation belongs to the given calendar
// year/month.
func (a Allocation) InMonth(year, month int) bool {
	return a.Year == year && a.Month == month
}

// =============================================================================
// LEAVE - A date range during which a resource is unavailable
// =============================================================================

type Leave struct {
	ID         string
	ResourceID string
	LeaveType  string
	StartDate  Date
	EndDate    Date
	Notes      string
}

const DefaultLeaveType = "leave"

// ActiveOn reports whether the leave covers the given day. Both endpoints
// are inclusive: a leave whose start and end are the same calendar day is
// active on exactly that day.
func (l Leave) ActiveOn(today Date) bool {
	return WithinRange(today, l.StartDate, l.EndDate)
}

// UpcomingOn reports whether the leave starts strictly after the given day.
func (l Leave) UpcomingOn(today Date) bool {
	return l.StartDate.After(today)
}

// =============================================================================
// LOOKUP ENTITIES
// =============================================================================

type Project struct {
	ID          string
	Code        string
	Name        string
	Description string
	StartDate   *Date
	EndDate     *Date
	IsOngoing   bool
	StatusID    string
	IsArchived  bool
}

type Role struct {
	ID          string
	Name        string
	Description string
	Order       int
}

type Status struct {
	ID    string
	Name  string
	Color string
	Order int
}

type Flag struct {
	ID    string
	Name  string
	Color string
	Order int
}

// =============================================================================
// DERIVED VALUES - Computed per read, never persisted
// =============================================================================

// ResourceStatus classifies a resource as of a given day.
type ResourceStatus string

const (
	StatusAvailable ResourceStatus = "available"
	StatusWorking   ResourceStatus = "working"
	StatusOnLeave   ResourceStatus = "on_leave"
)

// HoursBreakdown is a planned/actual pair for one grouping bucket.
type HoursBreakdown struct {
	Planned decimal.Decimal
	Actual  decimal.Decimal
}

// ProjectHours is one entry of a resource's current-project summary.
type ProjectHours struct {
	ID           string
	Code         string
	Name         string
	PlannedHours decimal.Decimal
}
