/*
allocations.go - HTTP handlers for allocation rows

One row exists per (project, role, year, month, week); creating a second
row for the same tuple returns 409. The bulk endpoint upserts the grid's
rows one by one and reports per-row outcomes rather than failing the
whole batch.
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

// ListAllocations returns allocations filtered by period, project, or role.
func (h *Handler) ListAllocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sqlite.AllocationFilter{
		ProjectID: q.Get("projectId"),
		RoleID:    q.Get("roleId"),
	}
	if v := q.Get("year"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &filter.Year); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid year")
			return
		}
	}
	if v := q.Get("month"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &filter.Month); err != nil || filter.Month < 1 || filter.Month > 12 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid month")
			return
		}
	}

	allocations, err := h.Store.ListAllocations(r.Context(), filter)
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTOs(allocations))
}

// GetAllocation returns a single allocation.
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	a, err := h.Store.GetAllocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.internalError(w, "failed to get allocation", err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "allocation not found")
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(*a))
}

// allocationFromRequest validates and converts a request row. The returned
// string is a client-facing validation message; empty means valid.
func allocationFromRequest(req AllocationRequest) (engine.Allocation, string) {
	if req.ProjectID == "" || req.RoleID == "" {
		return engine.Allocation{}, "projectId and roleId are required"
	}
	if req.Year < 2000 || req.Year > 2100 {
		return engine.Allocation{}, "year out of range"
	}
	if req.Month < 1 || req.Month > 12 {
		return engine.Allocation{}, "month must be between 1 and 12"
	}
	if req.Week < 1 || req.Week > 5 {
		return engine.Allocation{}, "week must be between 1 and 5"
	}
	planned, err := req.PlannedHours.Decimal()
	if err != nil {
		return engine.Allocation{}, "invalid plannedHours"
	}
	actual, err := req.ActualHours.Decimal()
	if err != nil {
		return engine.Allocation{}, "invalid actualHours"
	}
	if planned.IsNegative() || actual.IsNegative() {
		return engine.Allocation{}, "hours must not be negative"
	}

	resourceIDs := req.ResourceIDs
	if resourceIDs == nil {
		resourceIDs = []string{}
	}
	return engine.Allocation{
		ProjectID:    req.ProjectID,
		RoleID:       req.RoleID,
		ResourceIDs:  resourceIDs,
		Year:         req.Year,
		Month:        req.Month,
		Week:         req.Week,
		PlannedHours: planned,
		ActualHours:  actual,
		Notes:        req.Notes,
	}, ""
}

// CreateAllocation creates one allocation row; 409 when the period tuple
// already exists.
func (h *Handler) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req AllocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, msg := allocationFromRequest(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, msg)
		return
	}

	saved, err := h.Store.SaveAllocation(r.Context(), a)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict,
			"an allocation for this project, role and period already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create allocation", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAllocationDTO(*saved))
}

// UpdateAllocation applies a partial update to an allocation's hours,
// membership, or notes.
func (h *Handler) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetAllocation(ctx, id)
	if err != nil {
		h.internalError(w, "failed to get allocation", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "allocation not found")
		return
	}

	var req UpdateAllocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ResourceIDs != nil {
		existing.ResourceIDs = req.ResourceIDs
	}
	if req.PlannedHours != nil {
		planned, err := req.PlannedHours.Decimal()
		if err != nil || planned.IsNegative() {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid plannedHours")
			return
		}
		existing.PlannedHours = planned
	}
	if req.ActualHours != nil {
		actual, err := req.ActualHours.Decimal()
		if err != nil || actual.IsNegative() {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid actualHours")
			return
		}
		existing.ActualHours = actual
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}

	updated, err := h.Store.UpdateAllocation(ctx, *existing)
	if err != nil {
		h.internalError(w, "failed to update allocation", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(*updated))
}

// DeleteAllocation removes an allocation row.
func (h *Handler) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Store.DeleteAllocation(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, codeNotFound, "allocation not found")
		return
	}
	if err != nil {
		h.internalError(w, "failed to delete allocation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// BulkUpsertAllocations upserts a batch of rows, reporting per-row
// outcomes. A row that fails validation or storage does not abort the
// rest of the batch.
func (h *Handler) BulkUpsertAllocations(w http.ResponseWriter, r *http.Request) {
	var req BulkAllocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Allocations) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "allocations must not be empty")
		return
	}

	resp := BulkAllocationResponse{Total: len(req.Allocations)}
	for i, row := range req.Allocations {
		a, msg := allocationFromRequest(row)
		if msg != "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %s", i, msg))
			continue
		}
		if _, err := h.Store.UpsertAllocation(r.Context(), a); err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", i, err))
			continue
		}
		resp.Successful++
	}
	writeJSON(w, http.StatusOK, resp)
}

// AssignResource adds or removes one resource on an allocation's
// membership list.
func (h *Handler) AssignResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AssignResourceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.AllocationID == "" || req.ResourceID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "allocationId and resourceId are required")
		return
	}
	if req.Action != "add" && req.Action != "remove" {
		writeError(w, http.StatusBadRequest, codeBadRequest, `action must be "add" or "remove"`)
		return
	}

	a, err := h.Store.GetAllocation(ctx, req.AllocationID)
	if err != nil {
		h.internalError(w, "failed to get allocation", err)
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "allocation not found")
		return
	}

	switch req.Action {
	case "add":
		if res, err := h.Store.GetResource(ctx, req.ResourceID); err != nil {
			h.internalError(w, "failed to get resource", err)
			return
		} else if res == nil {
			writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
			return
		}
		if !a.HasResource(req.ResourceID) {
			a.ResourceIDs = append(a.ResourceIDs, req.ResourceID)
		}
	case "remove":
		kept := a.ResourceIDs[:0]
		for _, id := range a.ResourceIDs {
			if id != req.ResourceID {
				kept = append(kept, id)
			}
		}
		a.ResourceIDs = kept
	}

	updated, err := h.Store.UpdateAllocation(ctx, *a)
	if err != nil {
		h.internalError(w, "failed to update allocation", err)
		return
	}
	writeJSON(w, http.StatusOK, toAllocationDTO(*updated))
}
