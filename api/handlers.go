/*
handlers.go - HTTP handlers for resources and leaves

PURPOSE:
  Exposes the allocation tracker via REST API. Handles HTTP
  request/response, JSON serialization, and delegates derivation to the
  engine package.

DERIVED STATE:
  Resource reads recompute status, workload, current projects, and leave
  classification on every request from the rows as they are now. Nothing
  derived is persisted.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Load rows from the store
  4. Derive per-read state via the engine
  5. Serialize response

ERROR HANDLING:
  Errors are returned in the error envelope with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Duplicate code/name/tuple
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - projects.go, allocations.go, dashboard.go, settings.go: Other routes
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Log   *logrus.Logger

	// Now supplies the request day. Tests pin it to a fixed date.
	Now func() engine.Date
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   log,
		Now:   engine.Today,
	}
}

// Health is the unauthenticated liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.Log.WithError(err).Error(msg)
	writeError(w, http.StatusInternalServerError, codeInternal, msg)
}

// projectCatalog returns every project, archived included, for resolving
// allocation references. Dangling ids are the engine's problem, not ours.
func (h *Handler) projectCatalog(ctx context.Context) ([]engine.Project, error) {
	active, err := h.Store.ListProjects(ctx, false, "")
	if err != nil {
		return nil, err
	}
	archived, err := h.Store.ListProjects(ctx, true, "")
	if err != nil {
		return nil, err
	}
	return append(active, archived...), nil
}

// buildResourceDTO derives the per-read state for one resource. The
// allocations slice is the current month's rows; leaves are the resource's
// own records.
func (h *Handler) buildResourceDTO(r engine.Resource, monthAllocations []engine.Allocation,
	leaves []engine.Leave, catalog []engine.Project, today engine.Date) ResourceDTO {

	dto := ResourceDTO{
		ID:             r.ID,
		Code:           r.Code,
		Name:           r.Name,
		Email:          r.Email,
		RoleID:         r.RoleID,
		Specialization: r.Specialization,
		Availability:   r.Availability,
		IsActive:       r.IsActive,

		Status:          string(engine.ResolveStatus(r, monthAllocations, leaves, today)),
		WorkloadPercent: engine.WorkloadPercent(r, monthAllocations, today),
		CurrentProjects: toProjectHoursDTOs(engine.CurrentProjects(r, monthAllocations, catalog, today)),
		UpcomingLeaves:  toLeaveDTOs(engine.UpcomingLeaves(leaves, today), today),
	}
	if current := engine.ActiveLeave(leaves, today); current != nil {
		leaveDTO := toLeaveDTO(*current, today)
		dto.CurrentLeave = &leaveDTO
	}
	if dto.CurrentProjects == nil {
		dto.CurrentProjects = []ProjectHoursDTO{}
	}
	return dto
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns resources with derived state attached.
// Query params: isActive (default true), roleId.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()

	active := r.URL.Query().Get("isActive") != "false"
	roleID := r.URL.Query().Get("roleId")

	resources, err := h.Store.ListResources(ctx, active, roleID)
	if err != nil {
		h.internalError(w, "failed to list resources", err)
		return
	}

	monthAllocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{
		Year: today.Year(), Month: int(today.Month()),
	})
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}

	leaves, err := h.Store.ListLeaves(ctx, sqlite.LeaveFilter{})
	if err != nil {
		h.internalError(w, "failed to list leaves", err)
		return
	}
	leavesByResource := make(map[string][]engine.Leave)
	for _, l := range leaves {
		leavesByResource[l.ResourceID] = append(leavesByResource[l.ResourceID], l)
	}

	catalog, err := h.projectCatalog(ctx)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}

	dtos := make([]ResourceDTO, len(resources))
	for i, res := range resources {
		dtos[i] = h.buildResourceDTO(res, monthAllocations, leavesByResource[res.ID], catalog, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetResource returns a single resource with derived state.
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()
	id := chi.URLParam(r, "id")

	res, err := h.Store.GetResource(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get resource", err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}

	monthAllocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{
		Year: today.Year(), Month: int(today.Month()),
	})
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}
	leaves, err := h.Store.ListLeaves(ctx, sqlite.LeaveFilter{ResourceID: id})
	if err != nil {
		h.internalError(w, "failed to list leaves", err)
		return
	}
	catalog, err := h.projectCatalog(ctx)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}

	writeJSON(w, http.StatusOK, h.buildResourceDTO(*res, monthAllocations, leaves, catalog, today))
}

// CreateResource creates a resource.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req CreateResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" || req.Name == "" || req.RoleID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "code, name and roleId are required")
		return
	}

	availability := 100
	if req.Availability != nil {
		availability = *req.Availability
	}
	if availability < 0 || availability > 100 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "availability must be between 0 and 100")
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	saved, err := h.Store.SaveResource(r.Context(), engine.Resource{
		Code:           req.Code,
		Name:           req.Name,
		Email:          req.Email,
		RoleID:         req.RoleID,
		Specialization: req.Specialization,
		Availability:   availability,
		IsActive:       isActive,
	})
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a resource with this code already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create resource", err)
		return
	}

	today := h.Now()
	writeJSON(w, http.StatusCreated, h.buildResourceDTO(*saved, nil, nil, nil, today))
}

// UpdateResource applies a partial update to a resource.
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetResource(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get resource", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}

	var req UpdateResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code != nil {
		existing.Code = *req.Code
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.RoleID != nil {
		existing.RoleID = *req.RoleID
	}
	if req.Specialization != nil {
		existing.Specialization = *req.Specialization
	}
	if req.Availability != nil {
		if *req.Availability < 0 || *req.Availability > 100 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "availability must be between 0 and 100")
			return
		}
		existing.Availability = *req.Availability
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := h.Store.UpdateResource(ctx, *existing)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a resource with this code already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to update resource", err)
		return
	}

	today := h.Now()
	leaves, err := h.Store.ListLeaves(ctx, sqlite.LeaveFilter{ResourceID: id})
	if err != nil {
		h.internalError(w, "failed to list leaves", err)
		return
	}
	monthAllocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{
		Year: today.Year(), Month: int(today.Month()),
	})
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}
	catalog, err := h.projectCatalog(ctx)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}
	writeJSON(w, http.StatusOK, h.buildResourceDTO(*updated, monthAllocations, leaves, catalog, today))
}

// DeleteResource removes a resource and, via cascade, its leaves.
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteResource(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	if err != nil {
		h.internalError(w, "failed to delete resource", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// ListResourceLeaves returns one resource's leaves with their temporal
// classification.
func (h *Handler) ListResourceLeaves(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	res, err := h.Store.GetResource(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get resource", err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}

	leaves, err := h.Store.ListLeaves(ctx, sqlite.LeaveFilter{ResourceID: id})
	if err != nil {
		h.internalError(w, "failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves, h.Now()))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns leaves, optionally filtered by resource, type, and
// date-range overlap (from/to, ISO dates).
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sqlite.LeaveFilter{
		ResourceID: q.Get("resourceId"),
		LeaveType:  q.Get("leaveType"),
	}
	if v := q.Get("from"); v != "" {
		d, err := engine.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = &d
	}
	if v := q.Get("to"); v != "" {
		d, err := engine.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.To = &d
	}

	leaves, err := h.Store.ListLeaves(r.Context(), filter)
	if err != nil {
		h.internalError(w, "failed to list leaves", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves, h.Now()))
}

// CreateLeave records a leave for a resource.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "resourceId is required")
		return
	}
	start, err := engine.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid startDate, expected YYYY-MM-DD")
		return
	}
	end, err := engine.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid endDate, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "endDate must not be before startDate")
		return
	}

	res, err := h.Store.GetResource(ctx, req.ResourceID)
	if err != nil {
		h.internalError(w, "failed to get resource", err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}

	saved, err := h.Store.SaveLeave(ctx, engine.Leave{
		ResourceID: req.ResourceID,
		LeaveType:  req.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Notes:      req.Notes,
	})
	if err != nil {
		h.internalError(w, "failed to create leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(*saved, h.Now()))
}

// GetLeave returns a single leave.
func (h *Handler) GetLeave(w http.ResponseWriter, r *http.Request) {
	l, err := h.Store.GetLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.internalError(w, "failed to get leave", err)
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "leave not found")
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*l, h.Now()))
}

// UpdateLeave applies a partial update to a leave.
func (h *Handler) UpdateLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetLeave(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get leave", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "leave not found")
		return
	}

	var req UpdateLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LeaveType != nil {
		existing.LeaveType = *req.LeaveType
	}
	if req.StartDate != nil {
		d, err := engine.ParseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		existing.StartDate = d
	}
	if req.EndDate != nil {
		d, err := engine.ParseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		existing.EndDate = d
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	if existing.EndDate.Before(existing.StartDate) {
		writeError(w, http.StatusBadRequest, codeBadRequest, "endDate must not be before startDate")
		return
	}

	updated, err := h.Store.UpdateLeave(ctx, *existing)
	if err != nil {
		h.internalError(w, "failed to update leave", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(*updated, h.Now()))
}

// DeleteLeave removes a leave.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteLeave(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, codeNotFound, "leave not found")
		return
	}
	if err != nil {
		h.internalError(w, "failed to delete leave", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
