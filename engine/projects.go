package engine

// =============================================================================
// CURRENT PROJECTS
// =============================================================================

// CurrentProjects returns the distinct projects the resource is planned on
// for today's calendar month, with planned hours summed per project. Entries
// appear in the order their project is first seen in the allocation list.
//
// Per-project sums are NOT rounded here; display rounding is the caller's
// job. (The workload and dashboard paths round, this one never did - keep
// the raw sums so both behaviors stay distinguishable.)
//
// An allocation referencing a project absent from the catalog is silently
// skipped; a dangling id is not worth failing a read for.
func CurrentProjects(resource Resource, allocations []Allocation, catalog []Project, today Date) []ProjectHours {
	byID := make(map[string]Project, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	year, month := today.Year(), int(today.Month())

	var result []ProjectHours
	index := make(map[string]int)

	for _, a := range allocations {
		if !a.HasResource(resource.ID) || !a.InMonth(year, month) || !a.PlannedHours.IsPositive() {
			continue
		}
		project, ok := byID[a.ProjectID]
		if !ok {
			continue
		}
		if i, seen := index[project.ID]; seen {
			result[i].PlannedHours = result[i].PlannedHours.Add(a.PlannedHours)
			continue
		}
		index[project.ID] = len(result)
		result = append(result, ProjectHours{
			ID:           project.ID,
			Code:         project.Code,
			Name:         project.Name,
			PlannedHours: a.PlannedHours,
		})
	}
	return result
}
