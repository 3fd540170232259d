/*
dashboard.go - Aggregated read-only dashboard endpoints

All figures here are derived per request from the allocation rows via the
engine's aggregators. Group sums are rounded to one decimal after
summation; the overview utilization is actual/planned as a percentage
with two decimals.
*/
package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

var oneHundred = decimal.NewFromInt(100)

// utilization returns actual/planned as a percentage with two decimals,
// "0" when nothing is planned.
func utilization(planned, actual decimal.Decimal) string {
	if !planned.IsPositive() {
		return "0"
	}
	return actual.Div(planned).Mul(oneHundred).Round(2).String()
}

// DashboardOverview returns the landing-page counts and current-month
// utilization.
func (h *Handler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()

	activeProjects, err := h.Store.CountProjects(ctx, false)
	if err != nil {
		h.internalError(w, "failed to count projects", err)
		return
	}
	ongoingProjects, err := h.Store.CountOngoingProjects(ctx)
	if err != nil {
		h.internalError(w, "failed to count projects", err)
		return
	}
	activeResources, err := h.Store.CountResources(ctx, true)
	if err != nil {
		h.internalError(w, "failed to count resources", err)
		return
	}
	totalAllocations, err := h.Store.CountAllocations(ctx)
	if err != nil {
		h.internalError(w, "failed to count allocations", err)
		return
	}

	monthAllocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{
		Year: today.Year(), Month: int(today.Month()),
	})
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}
	planned := engine.SumHours(monthAllocations, engine.FieldPlanned)
	actual := engine.SumHours(monthAllocations, engine.FieldActual)

	writeJSON(w, http.StatusOK, OverviewDTO{
		ActiveProjects:    activeProjects,
		OngoingProjects:   ongoingProjects,
		ActiveResources:   activeResources,
		TotalAllocations:  totalAllocations,
		MonthPlannedHours: hoursString(planned),
		MonthActualHours:  hoursString(actual),
		MonthUtilization:  utilization(planned, actual),
	})
}

// DashboardMonthly breaks one month down by week and by project.
// Query params: year, month (default: current).
func (h *Handler) DashboardMonthly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := h.Now()

	year, month := today.Year(), int(today.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid year")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid month")
			return
		}
		month = n
	}

	allocations, err := h.Store.ListAllocations(ctx, sqlite.AllocationFilter{Year: year, Month: month})
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}

	byWeek := engine.GroupByWeek(allocations)
	weeks := make([]int, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	weekBuckets := make([]HoursBucketDTO, len(weeks))
	for i, week := range weeks {
		weekBuckets[i] = HoursBucketDTO{
			Key:          strconv.Itoa(week),
			Label:        fmt.Sprintf("Week %d", week),
			PlannedHours: hoursString(byWeek[week].Planned),
			ActualHours:  hoursString(byWeek[week].Actual),
		}
	}

	catalog, err := h.projectCatalog(ctx)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}
	names := make(map[string]string, len(catalog))
	for _, p := range catalog {
		names[p.ID] = p.Name
	}
	projectBuckets := bucketsByName(engine.GroupByProject(allocations), names)

	writeJSON(w, http.StatusOK, MonthlyDashboardDTO{
		Year:      year,
		Month:     month,
		Planned:   hoursString(engine.SumHours(allocations, engine.FieldPlanned)),
		Actual:    hoursString(engine.SumHours(allocations, engine.FieldActual)),
		ByWeek:    weekBuckets,
		ByProject: projectBuckets,
	})
}

// DashboardResource returns one resource's all-time totals, current
// workload, and per-project breakdown.
func (h *Handler) DashboardResource(w http.ResponseWriter, r *http.Request) {
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

	allocations, err := h.Store.ListAllocationsByResource(ctx, id)
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}

	catalog, err := h.projectCatalog(ctx)
	if err != nil {
		h.internalError(w, "failed to list projects", err)
		return
	}
	names := make(map[string]string, len(catalog))
	for _, p := range catalog {
		names[p.ID] = p.Name
	}

	writeJSON(w, http.StatusOK, ResourceDashboardDTO{
		ResourceID:      res.ID,
		Name:            res.Name,
		TotalPlanned:    hoursString(engine.SumHours(allocations, engine.FieldPlanned)),
		TotalActual:     hoursString(engine.SumHours(allocations, engine.FieldActual)),
		WorkloadPercent: engine.WorkloadPercent(*res, allocations, today),
		MonthlyCapacity: hoursString(engine.MonthlyCapacity(*res)),
		ByProject:       bucketsByName(engine.GroupByProject(allocations), names),
	})
}

// DashboardProject returns one project's totals and role breakdown.
func (h *Handler) DashboardProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	allocations, err := h.Store.ListAllocationsByProject(ctx, id)
	if err != nil {
		h.internalError(w, "failed to list allocations", err)
		return
	}

	roles, err := h.Store.ListRoles(ctx)
	if err != nil {
		h.internalError(w, "failed to list roles", err)
		return
	}
	names := make(map[string]string, len(roles))
	for _, role := range roles {
		names[role.ID] = role.Name
	}

	byRole := make(map[string]engine.HoursBreakdown)
	for _, a := range allocations {
		b := byRole[a.RoleID]
		b.Planned = b.Planned.Add(a.PlannedHours)
		b.Actual = b.Actual.Add(a.ActualHours)
		byRole[a.RoleID] = b
	}
	for roleID, b := range byRole {
		b.Planned = engine.RoundHours(b.Planned)
		b.Actual = engine.RoundHours(b.Actual)
		byRole[roleID] = b
	}

	writeJSON(w, http.StatusOK, ProjectDashboardDTO{
		ProjectID:    p.ID,
		Name:         p.Name,
		TotalPlanned: hoursString(engine.SumHours(allocations, engine.FieldPlanned)),
		TotalActual:  hoursString(engine.SumHours(allocations, engine.FieldActual)),
		ByRole:       bucketsByName(byRole, names),
	})
}

// bucketsByName renders a grouping map as a stable, key-sorted bucket
// list with display labels resolved from the names map.
func bucketsByName(groups map[string]engine.HoursBreakdown, names map[string]string) []HoursBucketDTO {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buckets := make([]HoursBucketDTO, len(keys))
	for i, k := range keys {
		buckets[i] = HoursBucketDTO{
			Key:          k,
			Label:        names[k],
			PlannedHours: hoursString(groups[k].Planned),
			ActualHours:  hoursString(groups[k].Actual),
		}
	}
	return buckets
}
