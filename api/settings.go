/*
settings.go - HTTP handlers for lookup tables and API keys

Statuses, flags, and roles are the small managed vocabularies behind the
settings screens. Names are unique; collisions return 409. API keys are
provisioned here too; the full secret appears in exactly one response.
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/allocation-tracker/apikey"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

const defaultLookupColor = "#6B7280"

// =============================================================================
// STATUSES
// =============================================================================

func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Store.ListStatuses(r.Context())
	if err != nil {
		h.internalError(w, "failed to list statuses", err)
		return
	}
	dtos := make([]StatusDTO, len(statuses))
	for i, st := range statuses {
		dtos[i] = StatusDTO{ID: st.ID, Name: st.Name, Color: st.Color, Order: st.Order}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}
	saved, err := h.Store.SaveStatus(r.Context(), engine.Status{
		Name: *req.Name, Color: *req.Color, Order: intOrZero(req.Order),
	})
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a status with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create status", err)
		return
	}
	writeJSON(w, http.StatusCreated, StatusDTO{ID: saved.ID, Name: saved.Name, Color: saved.Color, Order: saved.Order})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetStatus(r.Context(), id)
	if err != nil {
		h.internalError(w, "failed to get status", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "status not found")
		return
	}

	var req LookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Color != nil {
		existing.Color = *req.Color
	}
	if req.Order != nil {
		existing.Order = *req.Order
	}

	updated, err := h.Store.UpdateStatus(r.Context(), *existing)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a status with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to update status", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusDTO{ID: updated.ID, Name: updated.Name, Color: updated.Color, Order: updated.Order})
}

func (h *Handler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	h.deleteLookup(w, r, h.Store.DeleteStatus, "status not found")
}

// =============================================================================
// FLAGS
// =============================================================================

func (h *Handler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.Store.ListFlags(r.Context())
	if err != nil {
		h.internalError(w, "failed to list flags", err)
		return
	}
	writeJSON(w, http.StatusOK, toFlagDTOs(flags))
}

func (h *Handler) CreateFlag(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLookup(w, r)
	if !ok {
		return
	}
	saved, err := h.Store.SaveFlag(r.Context(), engine.Flag{
		Name: *req.Name, Color: *req.Color, Order: intOrZero(req.Order),
	})
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a flag with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create flag", err)
		return
	}
	writeJSON(w, http.StatusCreated, FlagDTO{ID: saved.ID, Name: saved.Name, Color: saved.Color, Order: saved.Order})
}

func (h *Handler) UpdateFlag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetFlag(r.Context(), id)
	if err != nil {
		h.internalError(w, "failed to get flag", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "flag not found")
		return
	}

	var req LookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Color != nil {
		existing.Color = *req.Color
	}
	if req.Order != nil {
		existing.Order = *req.Order
	}

	updated, err := h.Store.UpdateFlag(r.Context(), *existing)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a flag with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to update flag", err)
		return
	}
	writeJSON(w, http.StatusOK, FlagDTO{ID: updated.ID, Name: updated.Name, Color: updated.Color, Order: updated.Order})
}

func (h *Handler) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	h.deleteLookup(w, r, h.Store.DeleteFlag, "flag not found")
}

// =============================================================================
// ROLES
// =============================================================================

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		h.internalError(w, "failed to list roles", err)
		return
	}
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = RoleDTO{ID: role.ID, Name: role.Name, Description: role.Description, Order: role.Order}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required")
		return
	}
	saved, err := h.Store.SaveRole(r.Context(), engine.Role{
		Name: *req.Name, Description: strOrEmpty(req.Description), Order: intOrZero(req.Order),
	})
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a role with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to create role", err)
		return
	}
	writeJSON(w, http.StatusCreated, RoleDTO{ID: saved.ID, Name: saved.Name, Description: saved.Description, Order: saved.Order})
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetRole(r.Context(), id)
	if err != nil {
		h.internalError(w, "failed to get role", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "role not found")
		return
	}

	var req LookupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Order != nil {
		existing.Order = *req.Order
	}

	updated, err := h.Store.UpdateRole(r.Context(), *existing)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "a role with this name already exists")
		return
	}
	if err != nil {
		h.internalError(w, "failed to update role", err)
		return
	}
	writeJSON(w, http.StatusOK, RoleDTO{ID: updated.ID, Name: updated.Name, Description: updated.Description, Order: updated.Order})
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	h.deleteLookup(w, r, h.Store.DeleteRole, "role not found")
}

// =============================================================================
// API KEYS
// =============================================================================

func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Store.ListAPIKeys(r.Context())
	if err != nil {
		h.internalError(w, "failed to list API keys", err)
		return
	}
	dtos := make([]APIKeyDTO, len(keys))
	for i, k := range keys {
		dtos[i] = toAPIKeyDTO(k)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAPIKey provisions a key and returns the secret exactly once.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required")
		return
	}

	key, err := apikey.Generate()
	if err != nil {
		h.internalError(w, "failed to generate API key", err)
		return
	}
	hash, err := apikey.Hash(key)
	if err != nil {
		h.internalError(w, "failed to hash API key", err)
		return
	}

	saved, err := h.Store.SaveAPIKey(r.Context(), sqlite.APIKey{
		Name:      req.Name,
		KeyPrefix: apikey.Prefix(key),
		KeyHash:   hash,
		IsActive:  true,
	})
	if err != nil {
		h.internalError(w, "failed to save API key", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateAPIKeyResponse{
		APIKeyDTO: toAPIKeyDTO(*saved),
		Key:       key,
	})
}

func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	h.deleteLookup(w, r, h.Store.DeleteAPIKey, "API key not found")
}

// =============================================================================
// SHARED
// =============================================================================

func decodeLookup(w http.ResponseWriter, r *http.Request) (LookupRequest, bool) {
	var req LookupRequest
	if !decodeBody(w, r, &req) {
		return req, false
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "name is required")
		return req, false
	}
	if req.Color == nil || *req.Color == "" {
		color := defaultLookupColor
		req.Color = &color
	}
	return req, true
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (h *Handler) deleteLookup(w http.ResponseWriter, r *http.Request,
	del func(ctx context.Context, id string) error, notFoundMsg string) {

	id := chi.URLParam(r, "id")
	err := del(r.Context(), id)
	if err == sqlite.ErrNotFound {
		writeError(w, http.StatusNotFound, codeNotFound, notFoundMsg)
		return
	}
	if err != nil {
		h.internalError(w, "failed to delete record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
