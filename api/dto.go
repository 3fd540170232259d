/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

ENVELOPE:
  Successful responses wrap the payload as {"data": ...}; errors come back
  as {"error": {"code": ..., "message": ...}}. See respond.go.

HOURS:
  Hour fields are serialized as decimal strings ("12.5") and accepted as
  either JSON numbers or strings on input; requests carry them as the Hours
  type and handlers coerce to decimal exactly once.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

// =============================================================================
// RESOURCES
// =============================================================================

// ResourceDTO is a resource with its derived, per-read state attached.
type ResourceDTO struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	RoleID         string `json:"roleId"`
	Specialization string `json:"specialization,omitempty"`
	Availability   int    `json:"availability"`
	IsActive       bool   `json:"isActive"`

	// Derived per read, never stored
	Status          string            `json:"status"`
	WorkloadPercent int               `json:"workloadPercent"`
	CurrentProjects []ProjectHoursDTO `json:"currentProjects"`
	CurrentLeave    *LeaveDTO         `json:"currentLeave,omitempty"`
	UpcomingLeaves  []LeaveDTO        `json:"upcomingLeaves"`
}

// ProjectHoursDTO is one entry of a resource's current-project summary.
type ProjectHoursDTO struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	PlannedHours string `json:"plannedHours"`
}

// CreateResourceRequest is the request to create a resource.
type CreateResourceRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RoleID         string `json:"roleId"`
	Specialization string `json:"specialization"`
	Availability   *int   `json:"availability"`
	IsActive       *bool  `json:"isActive"`
}

// UpdateResourceRequest is a partial resource update; nil fields are left
// unchanged.
type UpdateResourceRequest struct {
	Code           *string `json:"code"`
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	RoleID         *string `json:"roleId"`
	Specialization *string `json:"specialization"`
	Availability   *int    `json:"availability"`
	IsActive       *bool   `json:"isActive"`
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveDTO represents a leave with its temporal classification relative to
// the request day.
type LeaveDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resourceId"`
	LeaveType  string `json:"leaveType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Notes      string `json:"notes,omitempty"`
	IsActive   bool   `json:"isActive"`
	IsUpcoming bool   `json:"isUpcoming"`
}

// CreateLeaveRequest is the request to record a leave.
type CreateLeaveRequest struct {
	ResourceID string `json:"resourceId"`
	LeaveType  string `json:"leaveType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Notes      string `json:"notes"`
}

// UpdateLeaveRequest is a partial leave update.
type UpdateLeaveRequest struct {
	LeaveType *string `json:"leaveType"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Notes     *string `json:"notes"`
}

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	IsOngoing   bool      `json:"isOngoing"`
	StatusID    string    `json:"statusId"`
	IsArchived  bool      `json:"isArchived"`
	Flags       []FlagDTO `json:"flags"`
}

// ProjectDetailDTO is a project with its allocation summary attached.
type ProjectDetailDTO struct {
	ProjectDTO
	AllocatedResources []AllocatedResourceDTO `json:"allocatedResources"`
	ResourceCount      int                    `json:"resourceCount"`
	TotalPlannedHours  string                 `json:"totalPlannedHours"`
}

// AllocatedResourceDTO summarizes one resource's involvement in a project.
type AllocatedResourceDTO struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	RoleID       string `json:"roleId"`
	Status       string `json:"status"`
	PlannedHours string `json:"plannedHours"`
}

// CreateProjectRequest is the request to create a project.
type CreateProjectRequest struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	IsOngoing   bool     `json:"isOngoing"`
	StatusID    string   `json:"statusId"`
	FlagIDs     []string `json:"flagIds"`
}

// UpdateProjectRequest is a partial project update; a nil FlagIDs leaves
// flag links untouched.
type UpdateProjectRequest struct {
	Code        *string  `json:"code"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	IsOngoing   *bool    `json:"isOngoing"`
	StatusID    *string  `json:"statusId"`
	IsArchived  *bool    `json:"isArchived"`
	FlagIDs     []string `json:"flagIds"`
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// AllocationDTO represents an allocation row.
type AllocationDTO struct {
	ID           string   `json:"id"`
	ProjectID    string   `json:"projectId"`
	RoleID       string   `json:"roleId"`
	ResourceIDs  []string `json:"resourceIds"`
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	Week         int      `json:"week"`
	PlannedHours string   `json:"plannedHours"`
	ActualHours  string   `json:"actualHours"`
	Notes        string   `json:"notes,omitempty"`
}

// Hours carries an hour value from a request body. Clients send hours as
// either JSON numbers or numeric strings; both decode into the raw text,
// which handlers coerce to decimal exactly once.
type Hours string

func (h *Hours) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*h = Hours(s)
		return nil
	}
	*h = Hours(b)
	return nil
}

// Decimal parses the raw hour text. Empty input is zero.
func (h Hours) Decimal() (decimal.Decimal, error) {
	if h == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(h))
}

// AllocationRequest creates or upserts one allocation row.
type AllocationRequest struct {
	ProjectID    string   `json:"projectId"`
	RoleID       string   `json:"roleId"`
	ResourceIDs  []string `json:"resourceIds"`
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	Week         int      `json:"week"`
	PlannedHours Hours    `json:"plannedHours"`
	ActualHours  Hours    `json:"actualHours"`
	Notes        string   `json:"notes"`
}

// UpdateAllocationRequest is a partial allocation update. The period tuple
// is immutable once created; delete and recreate to move hours.
type UpdateAllocationRequest struct {
	ResourceIDs  []string `json:"resourceIds"`
	PlannedHours *Hours   `json:"plannedHours"`
	ActualHours  *Hours   `json:"actualHours"`
	Notes        *string  `json:"notes"`
}

// BulkAllocationRequest upserts a batch of grid rows in one call.
type BulkAllocationRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

// BulkAllocationResponse reports per-row outcomes of a bulk upsert.
type BulkAllocationResponse struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Total      int      `json:"total"`
	Errors     []string `json:"errors,omitempty"`
}

// AssignResourceRequest adds or removes one resource on an allocation.
type AssignResourceRequest struct {
	AllocationID string `json:"allocationId"`
	ResourceID   string `json:"resourceId"`
	Action       string `json:"action"` // "add" or "remove"
}

// =============================================================================
// LOOKUPS
// =============================================================================

type StatusDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

type FlagDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

type RoleDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// LookupRequest creates or updates a status, flag, or role. Fields are
// pointers so updates can distinguish "not provided" from zero values
// (order 0, empty description).
type LookupRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// =============================================================================
// API KEYS
// =============================================================================

// APIKeyDTO never exposes the hash; the full key appears only in
// CreateAPIKeyResponse, once.
type APIKeyDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	KeyPrefix  string  `json:"keyPrefix"`
	IsActive   bool    `json:"isActive"`
	LastUsedAt *string `json:"lastUsedAt,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}

type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

type CreateAPIKeyResponse struct {
	APIKeyDTO
	Key string `json:"key"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// OverviewDTO is the landing-page summary.
type OverviewDTO struct {
	ActiveProjects     int    `json:"activeProjects"`
	OngoingProjects    int    `json:"ongoingProjects"`
	ActiveResources    int    `json:"activeResources"`
	TotalAllocations   int    `json:"totalAllocations"`
	MonthPlannedHours  string `json:"monthPlannedHours"`
	MonthActualHours   string `json:"monthActualHours"`
	MonthUtilization   string `json:"monthUtilization"`
}

// HoursBucketDTO is one grouping bucket of planned/actual hours.
type HoursBucketDTO struct {
	Key          string `json:"key"`
	Label        string `json:"label,omitempty"`
	PlannedHours string `json:"plannedHours"`
	ActualHours  string `json:"actualHours"`
}

// MonthlyDashboardDTO breaks one month down by week and by project.
type MonthlyDashboardDTO struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Planned   string           `json:"plannedHours"`
	Actual    string           `json:"actualHours"`
	ByWeek    []HoursBucketDTO `json:"byWeek"`
	ByProject []HoursBucketDTO `json:"byProject"`
}

// ResourceDashboardDTO is the per-resource drill-down.
type ResourceDashboardDTO struct {
	ResourceID      string           `json:"resourceId"`
	Name            string           `json:"name"`
	TotalPlanned    string           `json:"totalPlannedHours"`
	TotalActual     string           `json:"totalActualHours"`
	WorkloadPercent int              `json:"workloadPercent"`
	MonthlyCapacity string           `json:"monthlyCapacity"`
	ByProject       []HoursBucketDTO `json:"byProject"`
}

// ProjectDashboardDTO is the per-project drill-down.
type ProjectDashboardDTO struct {
	ProjectID    string           `json:"projectId"`
	Name         string           `json:"name"`
	TotalPlanned string           `json:"totalPlannedHours"`
	TotalActual  string           `json:"totalActualHours"`
	ByRole       []HoursBucketDTO `json:"byRole"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func hoursString(d decimal.Decimal) string {
	return d.String()
}

func toLeaveDTO(l engine.Leave, today engine.Date) LeaveDTO {
	return LeaveDTO{
		ID:         l.ID,
		ResourceID: l.ResourceID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.String(),
		EndDate:    l.EndDate.String(),
		Notes:      l.Notes,
		IsActive:   l.ActiveOn(today),
		IsUpcoming: l.UpcomingOn(today),
	}
}

func toLeaveDTOs(leaves []engine.Leave, today engine.Date) []LeaveDTO {
	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l, today)
	}
	return dtos
}

func toProjectHoursDTOs(entries []engine.ProjectHours) []ProjectHoursDTO {
	dtos := make([]ProjectHoursDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ProjectHoursDTO{
			ID:           e.ID,
			Code:         e.Code,
			Name:         e.Name,
			PlannedHours: hoursString(e.PlannedHours),
		}
	}
	return dtos
}

func toFlagDTOs(flags []engine.Flag) []FlagDTO {
	dtos := make([]FlagDTO, len(flags))
	for i, f := range flags {
		dtos[i] = FlagDTO{ID: f.ID, Name: f.Name, Color: f.Color, Order: f.Order}
	}
	return dtos
}

func toProjectDTO(p engine.Project, flags []engine.Flag) ProjectDTO {
	dto := ProjectDTO{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		IsOngoing:   p.IsOngoing,
		StatusID:    p.StatusID,
		IsArchived:  p.IsArchived,
		Flags:       toFlagDTOs(flags),
	}
	if p.StartDate != nil {
		s := p.StartDate.String()
		dto.StartDate = &s
	}
	if p.EndDate != nil {
		s := p.EndDate.String()
		dto.EndDate = &s
	}
	return dto
}

func toAllocationDTO(a engine.Allocation) AllocationDTO {
	resourceIDs := a.ResourceIDs
	if resourceIDs == nil {
		resourceIDs = []string{}
	}
	return AllocationDTO{
		ID:           a.ID,
		ProjectID:    a.ProjectID,
		RoleID:       a.RoleID,
		ResourceIDs:  resourceIDs,
		Year:         a.Year,
		Month:        a.Month,
		Week:         a.Week,
		PlannedHours: hoursString(a.PlannedHours),
		ActualHours:  hoursString(a.ActualHours),
		Notes:        a.Notes,
	}
}

func toAllocationDTOs(allocations []engine.Allocation) []AllocationDTO {
	dtos := make([]AllocationDTO, len(allocations))
	for i, a := range allocations {
		dtos[i] = toAllocationDTO(a)
	}
	return dtos
}

func toAPIKeyDTO(k sqlite.APIKey) APIKeyDTO {
	dto := APIKeyDTO{
		ID:        k.ID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.Format(time.RFC3339)
		dto.LastUsedAt = &s
	}
	return dto
}
