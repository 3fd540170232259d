/*
seed.go - Default lookup values and demo data

Seed installs the default statuses, flags, and roles into an empty
database so the settings screens start populated. SeedDemoData layers a
small demo dataset (projects, resources, allocations, leaves) on top for
exploring the API; it is also exposed as POST /api/admin/seed.

A settings marker keeps seeding idempotent across restarts.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

const seedMarkerKey = "seeded"

var defaultStatuses = []engine.Status{
	{Name: "Planned", Color: "#6B7280", Order: 1},
	{Name: "Active", Color: "#22C55E", Order: 2},
	{Name: "On Hold", Color: "#F59E0B", Order: 3},
	{Name: "Completed", Color: "#3B82F6", Order: 4},
}

var defaultFlags = []engine.Flag{
	{Name: "Priority", Color: "#EF4444", Order: 1},
	{Name: "At Risk", Color: "#F97316", Order: 2},
	{Name: "Client Facing", Color: "#8B5CF6", Order: 3},
}

var defaultRoles = []engine.Role{
	{Name: "Developer", Description: "Builds and maintains software", Order: 1},
	{Name: "Designer", Description: "UX and visual design", Order: 2},
	{Name: "Project Manager", Description: "Planning and coordination", Order: 3},
	{Name: "QA Engineer", Description: "Testing and quality", Order: 4},
}

// Seed installs the default lookup values once. Safe to call on every
// startup.
func Seed(ctx context.Context, store *sqlite.Store, log *logrus.Logger) error {
	marker, err := store.GetSetting(ctx, seedMarkerKey)
	if err != nil {
		return err
	}
	if marker != nil {
		var seeded bool
		if json.Unmarshal(marker, &seeded) == nil && seeded {
			return nil
		}
	}

	for _, st := range defaultStatuses {
		if _, err := store.SaveStatus(ctx, st); err != nil && err != sqlite.ErrDuplicate {
			return err
		}
	}
	for _, f := range defaultFlags {
		if _, err := store.SaveFlag(ctx, f); err != nil && err != sqlite.ErrDuplicate {
			return err
		}
	}
	for _, role := range defaultRoles {
		if _, err := store.SaveRole(ctx, role); err != nil && err != sqlite.ErrDuplicate {
			return err
		}
	}

	log.Info("seeded default statuses, flags and roles")
	return store.PutSetting(ctx, seedMarkerKey, true)
}

// SeedDemoData loads a small demo dataset for the current month.
func (h *Handler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()

	if err := Seed(ctx, h.Store, h.Log); err != nil {
		h.internalError(w, "failed to seed defaults", err)
		return
	}

	statuses, err := h.Store.ListStatuses(ctx)
	if err != nil || len(statuses) == 0 {
		h.internalError(w, "failed to load statuses", err)
		return
	}
	roles, err := h.Store.ListRoles(ctx)
	if err != nil || len(roles) == 0 {
		h.internalError(w, "failed to load roles", err)
		return
	}

	activeStatus := statuses[0]
	for _, st := range statuses {
		if st.Name == "Active" {
			activeStatus = st
		}
	}
	developer, manager := roles[0], roles[0]
	for _, role := range roles {
		switch role.Name {
		case "Developer":
			developer = role
		case "Project Manager":
			manager = role
		}
	}

	atlas, err := h.Store.SaveProject(ctx, engine.Project{
		Code: "DEMO-001", Name: "Atlas Migration",
		Description: "Legacy platform migration", StatusID: activeStatus.ID,
		IsOngoing: true,
	}, nil)
	if err == sqlite.ErrDuplicate {
		writeError(w, http.StatusConflict, codeConflict, "demo data already loaded")
		return
	}
	if err != nil {
		h.internalError(w, "failed to seed projects", err)
		return
	}
	borealis, err := h.Store.SaveProject(ctx, engine.Project{
		Code: "DEMO-002", Name: "Borealis Dashboard",
		Description: "Analytics rebuild", StatusID: activeStatus.ID,
	}, nil)
	if err != nil {
		h.internalError(w, "failed to seed projects", err)
		return
	}

	dana, err := h.Store.SaveResource(ctx, engine.Resource{
		Code: "DEMO-R1", Name: "Dana Reyes", Email: "dana@example.com",
		RoleID: developer.ID, Specialization: "Backend", Availability: 100, IsActive: true,
	})
	if err != nil {
		h.internalError(w, "failed to seed resources", err)
		return
	}
	sam, err := h.Store.SaveResource(ctx, engine.Resource{
		Code: "DEMO-R2", Name: "Sam Okafor", Email: "sam@example.com",
		RoleID: manager.ID, Availability: 50, IsActive: true,
	})
	if err != nil {
		h.internalError(w, "failed to seed resources", err)
		return
	}

	year, month := today.Year(), int(today.Month())
	rows := []engine.Allocation{
		{ProjectID: atlas.ID, RoleID: developer.ID, ResourceIDs: []string{dana.ID},
			Year: year, Month: month, Week: 1, PlannedHours: decimal.NewFromInt(32)},
		{ProjectID: atlas.ID, RoleID: developer.ID, ResourceIDs: []string{dana.ID},
			Year: year, Month: month, Week: 2, PlannedHours: decimal.NewFromInt(32)},
		{ProjectID: borealis.ID, RoleID: manager.ID, ResourceIDs: []string{sam.ID},
			Year: year, Month: month, Week: 1, PlannedHours: decimal.NewFromInt(16)},
	}
	for _, a := range rows {
		if _, err := h.Store.UpsertAllocation(ctx, a); err != nil {
			h.internalError(w, "failed to seed allocations", err)
			return
		}
	}

	// Sam is away next week
	if _, err := h.Store.SaveLeave(ctx, engine.Leave{
		ResourceID: sam.ID,
		StartDate:  today.AddDays(7),
		EndDate:    today.AddDays(11),
		Notes:      "Vacation",
	}); err != nil {
		h.internalError(w, "failed to seed leaves", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"projects":  2,
		"resources": 2,
		"rows":      len(rows),
	})
}
