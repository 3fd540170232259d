/*
projects.go - HTTP handlers for projects

The project detail view attaches an allocation summary: which resources
are allocated across the project's lifetime, their per-read status, and
their summed planned hours on this project.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

// ListProjects returns projects with their flags attached.
// Query params: isArchived (default false), statusId.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	archived := r.URL.Query().Get("isArchived") == "true"
	statusID := r.URL.Query().Get("statusId")

	projects, err := h.Store.ListProjects(ctx, archived, statusID)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}
	flagsByProject, err := h.Store.AllProjectFlags(ctx)
	if err != nil {
		h.internalError(w, "failed to list project flags", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p, flagsByProject[p.ID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a project with its allocation summary.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()
	id := chi.URLParam(r, "id")

	p, err := h.Store.GetProject(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get project", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "project not found")
		return
	}

	flags, err := h.Store.ProjectFlags(ctx, id)
	if err != nil {
		h.internalError(w, "failed to list project flags", err)
		return
	}
	allocations, err := h.Store.ListAllocationsByProject(ctx, id)
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}

	detail := ProjectDetailDTO{
		ProjectDTO:         toProjectDTO(*p, flags),
		AllocatedResources: []AllocatedResourceDTO{},
		TotalPlannedHours:  hoursString(engine.SumHours(allocations, engine.FieldPlanned)),
	}

	// Sum each resource's planned hours over the project's allocations,
	// first-seen order.
	var order []string
	plannedByResource := make(map[string]decimal.Decimal)
	for _, a := range allocations {
		for _, resourceID := range a.ResourceIDs {
			if _, seen := plannedByResource[resourceID]; !seen {
				order = append(order, resourceID)
			}
			plannedByResource[resourceID] = plannedByResource[resourceID].Add(a.PlannedHours)
		}
	}

	if len(order) > 0 {
		monthAllocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{
			Year: today.Year(), Month: int(today.Month()),
		})
		if err != nil {
			h.internalError(w, "failed to list allocations", err)
			return
		}
		allLeaves, err := h.Store.ListLeaves(ctx, sqlite.LeaveFilter{})
		if err != nil {
			h.internalError(w, "failed to list leaves", err)
			return
		}
		leavesByResource := make(map[string][]engine.Leave)
		for _, l := range allLeaves {
			leavesByResource[l.ResourceID] = append(leavesByResource[l.ResourceID], l)
		}

		for _, resourceID := range order {
			res, err := h.Store.GetResource(ctx, resourceID)
			if err != nil {
				h.internalError(w, "failed to get resource", err)
				return
			}
			if res == nil {
				// Resource deleted after being allocated; skip silently
				continue
			}
			detail.AllocatedResources = append(detail.AllocatedResources, AllocatedResourceDTO{
				ID:     res.ID,
				Code:   res.Code,
				Name:   res.Name,
				RoleID: res.RoleID,
				Status: string(engine.ResolveStatus(*res, monthAllocations,
					leavesByResource[res.ID], today)),
				PlannedHours: hoursString(engine.RoundHours(plannedByResource[resourceID])),
			})
		}
	}
	detail.ResourceCount = len(detail.AllocatedResources)

	writeJSON(w, http.StatusOK, detail)
}

// CreateProject creates a project with optional flag links.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" || req.Name == "" || req.StatusID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "code, name and statusId are required")
		return
	}

	p := engine.Project{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsOngoing:   req.IsOngoing,
		StatusID:    req.StatusID,
	}
	var badDate bool
	p.StartDate, badDate = parseOptionalDate(req.StartDate)
	if badDate {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid startDate, expected YYYY-MM-DD")
		return
	}
	p.EndDate, badDate = parseOptionalDate(req.EndDate)
	if badDate {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid endDate, expected YYYY-MM-DD")
		return
	}

	saved, err := h.Store.SaveProject(r.Context(), p, req.FlagIDs)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a project with this code already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create project", err)
		return
	}

	flags, err := h.Store.ProjectFlags(r.Context(), saved.ID)
	if err != nil {
		h.internalError(w, "failed to list project flags", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(*saved, flags))
}

// UpdateProject applies a partial update to a project.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetProject(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get project", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "project not found")
		return
	}

	var req UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code != nil {
		existing.Code = *req.Code
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.StartDate != nil {
		d, bad := parseOptionalDate(req.StartDate)
		if bad {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		existing.StartDate = d
	}
	if req.EndDate != nil {
		d, bad := parseOptionalDate(req.EndDate)
		if bad {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		existing.EndDate = d
	}
	if req.IsOngoing != nil {
		existing.IsOngoing = *req.IsOngoing
	}
	if req.StatusID != nil {
		existing.StatusID = *req.StatusID
	}
	if req.IsArchived != nil {
		existing.IsArchived = *req.IsArchived
	}

	updated, err := h.Store.UpdateProject(ctx, *existing, req.FlagIDs)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a project with this code already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to update project", err)
		return
	}

	flags, err := h.Store.ProjectFlags(ctx, updated.ID)
	if err != nil {
		h.internalError(w, "failed to list project flags", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*updated, flags))
}

// DeleteProject removes a project and, via cascade, its allocations.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteProject(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, codeNotFound, "project not found")
		return
	}
	if err != nil {
		h.internalError(w, "failed to delete project", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// parseOptionalDate maps an optional ISO date string to a Date pointer.
// The second return is true when the value is present but malformed.
func parseOptionalDate(s *string) (*engine.Date, bool) {
	if s == nil || *s == "" {
		return nil, false
	}
	d, err := engine.ParseDate(*s)
	if err != nil {
		return nil, true
	}
	return &d, false
}
