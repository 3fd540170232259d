package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/allocation-tracker/apikey"
	"github.com/warp/allocation-tracker/config"
	"github.com/warp/allocation-tracker/engine"
	"github.com/warp/allocation-tracker/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

// testDay pins every request to 2025-03-10 so derived state is stable.
var testDay = engine.NewDate(2025, time.March, 10)

type testServer struct {
	store   *sqlite.Store
	handler *Handler
	router  http.Handler
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := NewHandler(store, log)
	h.Now = func() engine.Date { return testDay }

	cfg := config.New()
	for _, m := range mutate {
		m(cfg)
	}

	return &testServer{store: store, handler: h, router: NewRouter(h, cfg)}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" envelope field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// seedBase creates a status, role, project, and resource directly in the
// store.
func (ts *testServer) seedBase(t *testing.T) (engine.Status, engine.Role, engine.Project, engine.Resource) {
	t.Helper()
	ctx := context.Background()

	status, err := ts.store.SaveStatus(ctx, engine.Status{Name: "Active", Color: "#22C55E"})
	require.NoError(t, err)
	role, err := ts.store.SaveRole(ctx, engine.Role{Name: "Developer"})
	require.NoError(t, err)
	project, err := ts.store.SaveProject(ctx, engine.Project{
		Code: "PRJ-001", Name: "Atlas", StatusID: status.ID,
	}, nil)
	require.NoError(t, err)
	resource, err := ts.store.SaveResource(ctx, engine.Resource{
		Code: "R001", Name: "Dana", RoleID: role.ID, Availability: 100, IsActive: true,
	})
	require.NoError(t, err)
	return *status, *role, *project, *resource
}

func (ts *testServer) seedAllocation(t *testing.T, a engine.Allocation) engine.Allocation {
	t.Helper()
	saved, err := ts.store.SaveAllocation(context.Background(), a)
	require.NoError(t, err)
	return *saved
}

// =============================================================================
// RESOURCES - derived state end to end
// =============================================================================

func TestListResources_DerivedFields(t *testing.T) {
	// GIVEN: A resource with a current-month allocation of 80h on one project
	// WHEN: Listing resources on 2025-03-10
	// THEN: status=working, workloadPercent=50, currentProjects has the
	//       project with its summed hours

	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(48),
	})
	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 2,
		PlannedHours: decimal.NewFromInt(32),
	})

	rec := ts.do(t, http.MethodGet, "/api/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resources []ResourceDTO
	decodeData(t, rec, &resources)
	require.Len(t, resources, 1)

	got := resources[0]
	assert.Equal(t, "working", got.Status)
	assert.Equal(t, 50, got.WorkloadPercent)
	require.Len(t, got.CurrentProjects, 1)
	assert.Equal(t, project.ID, got.CurrentProjects[0].ID)
	assert.Equal(t, "80", got.CurrentProjects[0].PlannedHours)
	assert.Nil(t, got.CurrentLeave)
	assert.Empty(t, got.UpcomingLeaves)
}

func TestGetResource_OnLeaveBeatsAllocations(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(40),
	})
	_, err := ts.store.SaveLeave(context.Background(), engine.Leave{
		ResourceID: resource.ID,
		StartDate:  engine.NewDate(2025, time.March, 8),
		EndDate:    engine.NewDate(2025, time.March, 12),
	})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/resources/"+resource.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ResourceDTO
	decodeData(t, rec, &got)
	assert.Equal(t, "on_leave", got.Status)
	require.NotNil(t, got.CurrentLeave)
	assert.True(t, got.CurrentLeave.IsActive)
	// Workload is still reported even while on leave
	assert.Equal(t, 25, got.WorkloadPercent)
}

func TestCreateResource_ValidatesAvailability(t *testing.T) {
	ts := newTestServer(t)
	_, role, _, _ := ts.seedBase(t)

	bad := 140
	rec := ts.do(t, http.MethodPost, "/api/resources", CreateResourceRequest{
		Code: "R100", Name: "Out of Range", RoleID: role.ID, Availability: &bad,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/resources", CreateResourceRequest{
		Code: "R100", Name: "New Person", RoleID: role.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got ResourceDTO
	decodeData(t, rec, &got)
	assert.Equal(t, 100, got.Availability)
	assert.Equal(t, "available", got.Status)
	assert.Equal(t, 0, got.WorkloadPercent)
}

func TestUpdateResource_RespondsWithFreshDerivedState(t *testing.T) {
	// GIVEN: A resource at 100% availability with an 80h current-month load
	// WHEN: Patching availability down to 50
	// THEN: The response body reflects the recomputed workload, not stale or
	//       empty derived data

	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(80),
	})

	rec := ts.do(t, http.MethodPatch, "/api/resources/"+resource.ID, map[string]any{
		"availability": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got ResourceDTO
	decodeData(t, rec, &got)
	assert.Equal(t, 50, got.Availability)
	assert.Equal(t, 100, got.WorkloadPercent)
	assert.Equal(t, "working", got.Status)
	require.Len(t, got.CurrentProjects, 1)
	assert.Equal(t, "80", got.CurrentProjects[0].PlannedHours)
}

func TestCreateResource_DuplicateCode409(t *testing.T) {
	ts := newTestServer(t)
	_, role, _, _ := ts.seedBase(t)

	rec := ts.do(t, http.MethodPost, "/api/resources", CreateResourceRequest{
		Code: "R001", Name: "Clone", RoleID: role.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// =============================================================================
// LEAVES
// =============================================================================

func TestCreateLeave_RejectsInvertedRange(t *testing.T) {
	ts := newTestServer(t)
	_, _, _, resource := ts.seedBase(t)

	rec := ts.do(t, http.MethodPost, "/api/leaves", CreateLeaveRequest{
		ResourceID: resource.ID,
		StartDate:  "2025-06-20",
		EndDate:    "2025-06-10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeave_ClassifiesUpcoming(t *testing.T) {
	ts := newTestServer(t)
	_, _, _, resource := ts.seedBase(t)

	rec := ts.do(t, http.MethodPost, "/api/leaves", CreateLeaveRequest{
		ResourceID: resource.ID,
		StartDate:  "2025-03-11",
		EndDate:    "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got LeaveDTO
	decodeData(t, rec, &got)
	assert.Equal(t, engine.DefaultLeaveType, got.LeaveType)
	assert.False(t, got.IsActive)
	assert.True(t, got.IsUpcoming)
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func TestCreateAllocation_DuplicateTuple409(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	body := AllocationRequest{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs:  []string{resource.ID},
		Year:         2025, Month: 3, Week: 1,
		PlannedHours: "8",
	}
	rec := ts.do(t, http.MethodPost, "/api/allocations", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/allocations", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAllocation_AcceptsStringAndNumberHours(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, _ := ts.seedBase(t)

	rec := ts.do(t, http.MethodPost, "/api/allocations", map[string]any{
		"projectId": project.ID, "roleId": role.ID,
		"year": 2025, "month": 3, "week": 1,
		"plannedHours": "12.5", "actualHours": 11.3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got AllocationDTO
	decodeData(t, rec, &got)
	assert.Equal(t, "12.5", got.PlannedHours)
	assert.Equal(t, "11.3", got.ActualHours)
	assert.Equal(t, []string{}, got.ResourceIDs)
}

func TestBulkUpsert_ReportsPerRowOutcomes(t *testing.T) {
	// Two valid rows (one of which updates the other path's tuple) and one
	// invalid row: the batch succeeds partially.
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	rec := ts.do(t, http.MethodPost, "/api/allocations/bulk", BulkAllocationRequest{
		Allocations: []AllocationRequest{
			{ProjectID: project.ID, RoleID: role.ID, ResourceIDs: []string{resource.ID},
				Year: 2025, Month: 3, Week: 1, PlannedHours: "8"},
			{ProjectID: project.ID, RoleID: role.ID, ResourceIDs: []string{resource.ID},
				Year: 2025, Month: 3, Week: 1, PlannedHours: "16"},
			{ProjectID: "", RoleID: role.ID, Year: 2025, Month: 3, Week: 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got BulkAllocationResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 2, got.Successful)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 3, got.Total)
	require.Len(t, got.Errors, 1)

	// The duplicate tuple was upserted, not duplicated
	allocations, err := ts.store.ListAllocations(context.Background(), sqlite.AllocationFilter{})
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.True(t, allocations[0].PlannedHours.Equal(decimal.NewFromInt(16)))
}

func TestAssignResource_AddAndRemove(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	a := ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		Year: 2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(8),
	})

	rec := ts.do(t, http.MethodPost, "/api/allocations/assign-resource", AssignResourceRequest{
		AllocationID: a.ID, ResourceID: resource.ID, Action: "add",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var got AllocationDTO
	decodeData(t, rec, &got)
	assert.Equal(t, []string{resource.ID}, got.ResourceIDs)

	// Adding twice is a no-op
	rec = ts.do(t, http.MethodPost, "/api/allocations/assign-resource", AssignResourceRequest{
		AllocationID: a.ID, ResourceID: resource.ID, Action: "add",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &got)
	assert.Equal(t, []string{resource.ID}, got.ResourceIDs)

	rec = ts.do(t, http.MethodPost, "/api/allocations/assign-resource", AssignResourceRequest{
		AllocationID: a.ID, ResourceID: resource.ID, Action: "remove",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &got)
	assert.Empty(t, got.ResourceIDs)
}

// =============================================================================
// PROJECT DETAIL
// =============================================================================

func TestGetProject_AllocationSummary(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.RequireFromString("20.05"),
	})
	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 2,
		PlannedHours: decimal.RequireFromString("10"),
	})

	rec := ts.do(t, http.MethodGet, "/api/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ProjectDetailDTO
	decodeData(t, rec, &got)
	assert.Equal(t, 1, got.ResourceCount)
	// 20.05 + 10 = 30.05, rounded half-up to one decimal
	assert.Equal(t, "30.1", got.TotalPlannedHours)
	require.Len(t, got.AllocatedResources, 1)
	assert.Equal(t, resource.ID, got.AllocatedResources[0].ID)
	assert.Equal(t, "working", got.AllocatedResources[0].Status)
	assert.Equal(t, "30.1", got.AllocatedResources[0].PlannedHours)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboardMonthly_GroupsAndRounds(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.RequireFromString("8.05"),
		ActualHours:  decimal.RequireFromString("8"),
	})
	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 2,
		PlannedHours: decimal.RequireFromString("16"),
	})

	rec := ts.do(t, http.MethodGet, "/api/dashboard/monthly?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got MonthlyDashboardDTO
	decodeData(t, rec, &got)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, 3, got.Month)
	// 8.05 + 16 = 24.05 -> 24.1 (rounded after summation)
	assert.Equal(t, "24.1", got.Planned)

	require.Len(t, got.ByWeek, 2)
	assert.Equal(t, "1", got.ByWeek[0].Key)
	assert.Equal(t, "8.1", got.ByWeek[0].PlannedHours)
	assert.Equal(t, "16", got.ByWeek[1].PlannedHours)

	require.Len(t, got.ByProject, 1)
	assert.Equal(t, "Atlas", got.ByProject[0].Label)
	assert.Equal(t, "24.1", got.ByProject[0].PlannedHours)
}

func TestDashboardOverview_Utilization(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(40),
		ActualHours:  decimal.NewFromInt(30),
	})

	rec := ts.do(t, http.MethodGet, "/api/dashboard/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got OverviewDTO
	decodeData(t, rec, &got)
	assert.Equal(t, 1, got.ActiveProjects)
	assert.Equal(t, 1, got.ActiveResources)
	assert.Equal(t, 1, got.TotalAllocations)
	assert.Equal(t, "40", got.MonthPlannedHours)
	assert.Equal(t, "75", got.MonthUtilization)
}

func TestDashboardResource_AllTimeTotals(t *testing.T) {
	ts := newTestServer(t)
	_, role, project, resource := ts.seedBase(t)

	// One current-month row, one historical row
	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2025, Month: 3, Week: 1,
		PlannedHours: decimal.NewFromInt(80),
	})
	ts.seedAllocation(t, engine.Allocation{
		ProjectID: project.ID, RoleID: role.ID,
		ResourceIDs: []string{resource.ID},
		Year:        2024, Month: 11, Week: 2,
		PlannedHours: decimal.NewFromInt(24),
	})

	rec := ts.do(t, http.MethodGet, "/api/dashboard/resource/"+resource.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got ResourceDashboardDTO
	decodeData(t, rec, &got)
	assert.Equal(t, "104", got.TotalPlanned)
	assert.Equal(t, "160", got.MonthlyCapacity)
	// Only the current month counts toward workload
	assert.Equal(t, 50, got.WorkloadPercent)
	require.Len(t, got.ByProject, 1)
	assert.Equal(t, "104", got.ByProject[0].PlannedHours)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestConfigStatuses_DuplicateName409(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/config/statuses", map[string]any{"name": "Active"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/config/statuses", map[string]any{"name": "Active"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfigStatuses_OrderResetsToZero(t *testing.T) {
	// GIVEN: A status created with a non-zero sort order
	// WHEN: Patching it with order 0
	// THEN: The zero is applied, not ignored

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/config/statuses", map[string]any{"name": "Paused", "order": 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created StatusDTO
	decodeData(t, rec, &created)
	require.Equal(t, 3, created.Order)

	rec = ts.do(t, http.MethodPatch, "/api/config/statuses/"+created.ID, map[string]any{"order": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated StatusDTO
	decodeData(t, rec, &updated)
	assert.Equal(t, 0, updated.Order)
	// Fields absent from the body stay untouched
	assert.Equal(t, "Paused", updated.Name)
	assert.Equal(t, created.Color, updated.Color)
}

func TestConfigRoles_DescriptionCleared(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/config/roles", map[string]any{
		"name": "Architect", "description": "Owns system design",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created RoleDTO
	decodeData(t, rec, &created)

	rec = ts.do(t, http.MethodPatch, "/api/config/roles/"+created.ID, map[string]any{"description": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated RoleDTO
	decodeData(t, rec, &updated)
	assert.Equal(t, "", updated.Description)
	assert.Equal(t, "Architect", updated.Name)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func TestAuth_Enforced(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.AuthEnabled = true })

	// Provision a key directly against the store
	key, err := apikey.Generate()
	require.NoError(t, err)
	hash, err := apikey.Hash(key)
	require.NoError(t, err)
	_, err = ts.store.SaveAPIKey(context.Background(), sqlite.APIKey{
		Name: "test", KeyPrefix: apikey.Prefix(key), KeyHash: hash, IsActive: true,
	})
	require.NoError(t, err)

	// Health stays open
	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No key -> 401
	rec = ts.do(t, http.MethodGet, "/api/resources", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key -> 401
	rec = ts.do(t, http.MethodGet, "/api/resources", nil, "X-API-Key", "rh_live_sk_wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid key via header and via bearer
	rec = ts.do(t, http.MethodGet, "/api/resources", nil, "X-API-Key", key)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/resources", nil, "Authorization", "Bearer "+key)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_DisabledByDefault(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/resources", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// SEEDING
// =============================================================================

func TestSeed_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, ts.store, ts.handler.Log))
	require.NoError(t, Seed(ctx, ts.store, ts.handler.Log))

	statuses, err := ts.store.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 4)
	roles, err := ts.store.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4)
}

func TestSeedDemoData_EndToEnd(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/admin/seed", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Demo resources come back with derived state for the pinned day
	rec = ts.do(t, http.MethodGet, "/api/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resources []ResourceDTO
	decodeData(t, rec, &resources)
	require.Len(t, resources, 2)
	for _, r := range resources {
		assert.Equal(t, "working", r.Status)
	}

	// Second load conflicts on the demo project code
	rec = ts.do(t, http.MethodPost, "/api/admin/seed", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
