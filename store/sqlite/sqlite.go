/*
Package sqlite provides the SQLite-backed store for the allocation tracker.

PURPOSE:
  Persists the relational schema the derivation engine reads from: projects,
  roles, statuses, flags, resources, leaves, allocations, and API keys. The
  engine itself never touches the database - read-path handlers load rows
  here and hand plain values to the engine.

KEY TABLES:
  resources:        People assignable to projects (availability 0-100)
  allocations:      One row per (project, role, year, month, week); resource
                    membership embedded as a JSON id array
  resource_leaves:  Inclusive date ranges of unavailability
  projects:         Project catalog with status and flags
  statuses/flags/roles: Lookup tables managed from the settings screens
  api_keys:         Hashed API keys for the programmatic interface
  settings:         Key/value JSON blobs (seed markers, org defaults)

HOURS REPRESENTATION:
  planned_hours/actual_hours are stored as one-decimal fixed-point strings to
  avoid floating-point drift in storage. They are coerced to decimal.Decimal
  exactly once, in the scan path here; the engine only ever sees decimals.

MEMBERSHIP QUERIES:
  resource_ids is a JSON array queried with json_each(), reproducing the
  containment lookups the read-paths need without a join table.

UNIQUENESS:
  allocations has a UNIQUE index on (project_id, role_id, year, month, week).
  Violations surface as ErrDuplicate; the bulk upsert path checks for the
  tuple first and updates in place.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/tracker.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/allocation-tracker/engine"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned by updates/deletes against missing rows.
	// Reads return a nil record instead.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a UNIQUE constraint is violated:
	// duplicate codes, names, or allocation tuples.
	ErrDuplicate = errors.New("duplicate record")
)

// Store implements persistence for all tracker entities using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS statuses (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '#6B7280',
		ord INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS flags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		color TEXT NOT NULL DEFAULT '#6B7280',
		ord INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		ord INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT,
		start_date TEXT,
		end_date TEXT,
		is_ongoing BOOLEAN NOT NULL DEFAULT FALSE,
		status_id TEXT NOT NULL REFERENCES statuses(id),
		is_archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_flags (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		flag_id TEXT NOT NULL REFERENCES flags(id) ON DELETE CASCADE,
		UNIQUE(project_id, flag_id)
	);

	CREATE TABLE IF NOT EXISTS resources (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT,
		role_id TEXT NOT NULL REFERENCES roles(id),
		specialization TEXT,
		availability INTEGER NOT NULL DEFAULT 100,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS resource_leaves (
		id TEXT PRIMARY KEY,
		resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		leave_type TEXT NOT NULL DEFAULT 'leave',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_resource
		ON resource_leaves(resource_id);
	CREATE INDEX IF NOT EXISTS idx_leaves_range
		ON resource_leaves(start_date, end_date);

	CREATE TABLE IF NOT EXISTS allocations (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		role_id TEXT NOT NULL REFERENCES roles(id),
		resource_ids TEXT NOT NULL DEFAULT '[]',
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		week INTEGER NOT NULL,
		planned_hours TEXT NOT NULL DEFAULT '0',
		actual_hours TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- One allocation row per (project, role, year, month, week)
	CREATE UNIQUE INDEX IF NOT EXISTS idx_allocations_unique
		ON allocations(project_id, role_id, year, month, week);
	CREATE INDEX IF NOT EXISTS idx_allocations_year_month
		ON allocations(year, month);
	CREATE INDEX IF NOT EXISTS idx_allocations_project
		ON allocations(project_id);

	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		key_prefix TEXT NOT NULL,
		key_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_used_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_api_keys_prefix
		ON api_keys(key_prefix);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func newID() string {
	return uuid.NewString()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseHours coerces a stored fixed-point string to a decimal. This is the
// single point where the string representation crosses into numeric land;
// everything past the scan path works in decimal.Decimal.
func parseHours(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// storeHours renders hours back to the one-decimal fixed-point form.
func storeHours(d decimal.Decimal) string {
	return d.Round(1).String()
}

func parseDatePtr(ns sql.NullString) *engine.Date {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d, err := engine.ParseDate(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func dateToNull(d *engine.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

// =============================================================================
// STATUSES
// =============================================================================

func (s *Store) ListStatuses(ctx context.Context) ([]engine.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, ord FROM statuses ORDER BY ord ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []engine.Status
	for rows.Next() {
		var st engine.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.Color, &st.Order); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *Store) GetStatus(ctx context.Context, id string) (*engine.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st engine.Status
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, ord FROM statuses WHERE id = ?`, id).
		Scan(&st.ID, &st.Name, &st.Color, &st.Order)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) SaveStatus(ctx context.Context, st engine.Status) (*engine.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO statuses (id, name, color, ord) VALUES (?, ?, ?, ?)`,
		st.ID, st.Name, st.Color, st.Order)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) UpdateStatus(ctx context.Context, st engine.Status) (*engine.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE statuses SET name = ?, color = ?, ord = ? WHERE id = ?`,
		st.Name, st.Color, st.Order, st.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &st, nil
}

func (s *Store) DeleteStatus(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "statuses", id)
}

// =============================================================================
// FLAGS
// =============================================================================

func (s *Store) ListFlags(ctx context.Context) ([]engine.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, ord FROM flags ORDER BY ord ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []engine.Flag
	for rows.Next() {
		var f engine.Flag
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &f.Order); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (s *Store) GetFlag(ctx context.Context, id string) (*engine.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var f engine.Flag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, ord FROM flags WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Color, &f.Order)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) SaveFlag(ctx context.Context, f engine.Flag) (*engine.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flags (id, name, color, ord) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.Color, f.Order)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) UpdateFlag(ctx context.Context, f engine.Flag) (*engine.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE flags SET name = ?, color = ?, ord = ? WHERE id = ?`,
		f.Name, f.Color, f.Order, f.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (s *Store) DeleteFlag(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "flags", id)
}

// =============================================================================
// ROLES
// =============================================================================

func (s *Store) ListRoles(ctx context.Context) ([]engine.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(description, ''), ord FROM roles ORDER BY ord ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []engine.Role
	for rows.Next() {
		var r engine.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Order); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *Store) GetRole(ctx context.Context, id string) (*engine.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r engine.Role
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description, ''), ord FROM roles WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Description, &r.Order)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveRole(ctx context.Context, r engine.Role) (*engine.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO roles (id, name, description, ord) VALUES (?, ?, ?, ?)`,
		r.ID, r.Name, nullString(r.Description), r.Order)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateRole(ctx context.Context, r engine.Role) (*engine.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE roles SET name = ?, description = ?, ord = ? WHERE id = ?`,
		r.Name, nullString(r.Description), r.Order, r.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *Store) DeleteRole(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "roles", id)
}

// =============================================================================
// PROJECTS
// =============================================================================

const projectColumns = `id, code, name, COALESCE(description, ''), start_date, end_date,
	is_ongoing, status_id, is_archived`

func scanProject(scanner interface{ Scan(...any) error }) (engine.Project, error) {
	var p engine.Project
	var start, end sql.NullString
	err := scanner.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &start, &end,
		&p.IsOngoing, &p.StatusID, &p.IsArchived)
	if err != nil {
		return p, err
	}
	p.StartDate = parseDatePtr(start)
	p.EndDate = parseDatePtr(end)
	return p, nil
}

// ListProjects returns projects filtered by archive state and, optionally,
// status. Newest first.
func (s *Store) ListProjects(ctx context.Context, archived bool, statusID string) ([]engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE is_archived = ?`
	args := []any{archived}
	if statusID != "" {
		query += ` AND status_id = ?`
		args = append(args, statusID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []engine.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (*engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProject inserts a project and its flag links atomically.
func (s *Store) SaveProject(ctx context.Context, p engine.Project, flagIDs []string) (*engine.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ts := now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO projects (id, code, name, description, start_date, end_date,
		 is_ongoing, status_id, is_archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Code, p.Name, nullString(p.Description),
		dateToNull(p.StartDate), dateToNull(p.EndDate),
		p.IsOngoing, p.StatusID, p.IsArchived, ts, ts)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}

	if err := replaceProjectFlags(ctx, tx, p.ID, flagIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject replaces the project row and, when flagIDs is non-nil, its
// flag links.
func (s *Store) UpdateProject(ctx context.Context, p engine.Project, flagIDs []string) (*engine.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET code = ?, name = ?, description = ?, start_date = ?,
		 end_date = ?, is_ongoing = ?, status_id = ?, is_archived = ?, updated_at = ?
		 WHERE id = ?`,
		p.Code, p.Name, nullString(p.Description),
		dateToNull(p.StartDate), dateToNull(p.EndDate),
		p.IsOngoing, p.StatusID, p.IsArchived, now(), p.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if flagIDs != nil {
		if err := replaceProjectFlags(ctx, tx, p.ID, flagIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "projects", id)
}

func replaceProjectFlags(ctx context.Context, tx *sql.Tx, projectID string, flagIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM project_flags WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	for _, flagID := range flagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_flags (project_id, flag_id) VALUES (?, ?)`,
			projectID, flagID); err != nil {
			return err
		}
	}
	return nil
}

// ProjectFlags returns the flags attached to one project.
func (s *Store) ProjectFlags(ctx context.Context, projectID string) ([]engine.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.name, f.color, f.ord
		 FROM project_flags pf JOIN flags f ON f.id = pf.flag_id
		 WHERE pf.project_id = ? ORDER BY f.ord ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []engine.Flag
	for rows.Next() {
		var f engine.Flag
		if err := rows.Scan(&f.ID, &f.Name, &f.Color, &f.Order); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// AllProjectFlags returns flags grouped by project id, for list endpoints
// that attach flags to many projects in one pass.
func (s *Store) AllProjectFlags(ctx context.Context) (map[string][]engine.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT pf.project_id, f.id, f.name, f.color, f.ord
		 FROM project_flags pf JOIN flags f ON f.id = pf.flag_id
		 ORDER BY f.ord ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byProject := make(map[string][]engine.Flag)
	for rows.Next() {
		var projectID string
		var f engine.Flag
		if err := rows.Scan(&projectID, &f.ID, &f.Name, &f.Color, &f.Order); err != nil {
			return nil, err
		}
		byProject[projectID] = append(byProject[projectID], f)
	}
	return byProject, rows.Err()
}

// =============================================================================
// RESOURCES
// =============================================================================

const resourceColumns = `id, code, name, COALESCE(email, ''), role_id,
	COALESCE(specialization, ''), availability, is_active`

func scanResource(scanner interface{ Scan(...any) error }) (engine.Resource, error) {
	var r engine.Resource
	err := scanner.Scan(&r.ID, &r.Code, &r.Name, &r.Email, &r.RoleID,
		&r.Specialization, &r.Availability, &r.IsActive)
	return r, err
}

// ListResources returns resources filtered by active state and, optionally,
// role. Newest first.
func (s *Store) ListResources(ctx context.Context, active bool, roleID string) ([]engine.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + resourceColumns + ` FROM resources WHERE is_active = ?`
	args := []any{active}
	if roleID != "" {
		query += ` AND role_id = ?`
		args = append(args, roleID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []engine.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *Store) GetResource(ctx context.Context, id string) (*engine.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	r, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveResource(ctx context.Context, r engine.Resource) (*engine.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (id, code, name, email, role_id, specialization,
		 availability, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Code, r.Name, nullString(r.Email), r.RoleID,
		nullString(r.Specialization), r.Availability, r.IsActive, ts, ts)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateResource(ctx context.Context, r engine.Resource) (*engine.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE resources SET code = ?, name = ?, email = ?, role_id = ?,
		 specialization = ?, availability = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		r.Code, r.Name, nullString(r.Email), r.RoleID,
		nullString(r.Specialization), r.Availability, r.IsActive, now(), r.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *Store) DeleteResource(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "resources", id)
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveFilter narrows a leave listing. From/To select leaves overlapping
// [From, To]; either side may be open.
type LeaveFilter struct {
	ResourceID string
	LeaveType  string
	From       *engine.Date
	To         *engine.Date
}

const leaveColumns = `id, resource_id, leave_type, start_date, end_date, COALESCE(notes, '')`

func scanLeave(scanner interface{ Scan(...any) error }) (engine.Leave, error) {
	var l engine.Leave
	var start, end string
	if err := scanner.Scan(&l.ID, &l.ResourceID, &l.LeaveType, &start, &end, &l.Notes); err != nil {
		return l, err
	}
	var err error
	if l.StartDate, err = engine.ParseDate(start); err != nil {
		return l, fmt.Errorf("bad start_date %q: %w", start, err)
	}
	if l.EndDate, err = engine.ParseDate(end); err != nil {
		return l, fmt.Errorf("bad end_date %q: %w", end, err)
	}
	return l, nil
}

func (s *Store) ListLeaves(ctx context.Context, f LeaveFilter) ([]engine.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + leaveColumns + ` FROM resource_leaves WHERE 1=1`
	var args []any

	if f.ResourceID != "" {
		query += ` AND resource_id = ?`
		args = append(args, f.ResourceID)
	}
	if f.LeaveType != "" {
		query += ` AND leave_type = ?`
		args = append(args, f.LeaveType)
	}
	// Overlap check: a leave overlaps [From, To] when it starts on or
	// before To and ends on or after From.
	if f.To != nil {
		query += ` AND start_date <= ?`
		args = append(args, f.To.String())
	}
	if f.From != nil {
		query += ` AND end_date >= ?`
		args = append(args, f.From.String())
	}
	query += ` ORDER BY start_date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []engine.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func (s *Store) GetLeave(ctx context.Context, id string) (*engine.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+leaveColumns+` FROM resource_leaves WHERE id = ?`, id)
	l, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) SaveLeave(ctx context.Context, l engine.Leave) (*engine.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = newID()
	}
	if l.LeaveType == "" {
		l.LeaveType = engine.DefaultLeaveType
	}
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resource_leaves (id, resource_id, leave_type, start_date,
		 end_date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ResourceID, l.LeaveType, l.StartDate.String(), l.EndDate.String(),
		nullString(l.Notes), ts, ts)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) UpdateLeave(ctx context.Context, l engine.Leave) (*engine.Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE resource_leaves SET leave_type = ?, start_date = ?, end_date = ?,
		 notes = ?, updated_at = ? WHERE id = ?`,
		l.LeaveType, l.StartDate.String(), l.EndDate.String(),
		nullString(l.Notes), now(), l.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (s *Store) DeleteLeave(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "resource_leaves", id)
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

// AllocationFilter narrows an allocation listing. Year/Month of zero mean
// no period filter.
type AllocationFilter struct {
	Year      int
	Month     int
	ProjectID string
	RoleID    string
}

const allocationColumns = `id, project_id, role_id, resource_ids, year, month, week,
	planned_hours, actual_hours, COALESCE(notes, '')`

func scanAllocation(scanner interface{ Scan(...any) error }) (engine.Allocation, error) {
	var a engine.Allocation
	var resourceIDs, planned, actual string
	err := scanner.Scan(&a.ID, &a.ProjectID, &a.RoleID, &resourceIDs,
		&a.Year, &a.Month, &a.Week, &planned, &actual, &a.Notes)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal([]byte(resourceIDs), &a.ResourceIDs); err != nil {
		a.ResourceIDs = nil
	}
	a.PlannedHours = parseHours(planned)
	a.ActualHours = parseHours(actual)
	return a, nil
}

func (s *Store) queryAllocations(ctx context.Context, query string, args ...any) ([]engine.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []engine.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

func (s *Store) ListAllocations(ctx context.Context, f AllocationFilter) ([]engine.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE 1=1`
	var args []any

	if f.Year != 0 {
		query += ` AND year = ?`
		args = append(args, f.Year)
	}
	if f.Month != 0 {
		query += ` AND month = ?`
		args = append(args, f.Month)
	}
	if f.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.RoleID != "" {
		query += ` AND role_id = ?`
		args = append(args, f.RoleID)
	}
	query += ` ORDER BY year ASC, month ASC, week ASC`

	return s.queryAllocations(ctx, query, args...)
}

// ListAllocationsByResource returns every allocation whose embedded
// membership list contains the resource id. Matching runs through
// json_each, the SQLite counterpart of the jsonb containment query the
// schema was designed around.
func (s *Store) ListAllocationsByResource(ctx context.Context, resourceID string) ([]engine.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + allocationColumns + ` FROM allocations
		WHERE EXISTS (SELECT 1 FROM json_each(allocations.resource_ids) WHERE json_each.value = ?)
		ORDER BY year ASC, month ASC, week ASC`
	return s.queryAllocations(ctx, query, resourceID)
}

func (s *Store) ListAllocationsByProject(ctx context.Context, projectID string) ([]engine.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + allocationColumns + ` FROM allocations
		WHERE project_id = ? ORDER BY year ASC, month ASC, week ASC`
	return s.queryAllocations(ctx, query, projectID)
}

func (s *Store) GetAllocation(ctx context.Context, id string) (*engine.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations WHERE id = ?`, id)
	a, err := scanAllocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAllocationByTuple looks up the unique row for a
// (project, role, year, month, week) tuple.
func (s *Store) GetAllocationByTuple(ctx context.Context, projectID, roleID string, year, month, week int) (*engine.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+allocationColumns+` FROM allocations
		 WHERE project_id = ? AND role_id = ? AND year = ? AND month = ? AND week = ?`,
		projectID, roleID, year, month, week)
	a, err := scanAllocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAllocation(ctx context.Context, a engine.Allocation) (*engine.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertAllocation(ctx, a)
}

func (s *Store) insertAllocation(ctx context.Context, a engine.Allocation) (*engine.Allocation, error) {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.ResourceIDs == nil {
		a.ResourceIDs = []string{}
	}
	resourceIDs, err := json.Marshal(a.ResourceIDs)
	if err != nil {
		return nil, err
	}
	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO allocations (id, project_id, role_id, resource_ids, year,
		 month, week, planned_hours, actual_hours, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, a.RoleID, string(resourceIDs), a.Year, a.Month, a.Week,
		storeHours(a.PlannedHours), storeHours(a.ActualHours),
		nullString(a.Notes), ts, ts)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateAllocation(ctx context.Context, a engine.Allocation) (*engine.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateAllocationLocked(ctx, a)
}

func (s *Store) updateAllocationLocked(ctx context.Context, a engine.Allocation) (*engine.Allocation, error) {
	if a.ResourceIDs == nil {
		a.ResourceIDs = []string{}
	}
	resourceIDs, err := json.Marshal(a.ResourceIDs)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE allocations SET resource_ids = ?, planned_hours = ?,
		 actual_hours = ?, notes = ?, updated_at = ? WHERE id = ?`,
		string(resourceIDs), storeHours(a.PlannedHours), storeHours(a.ActualHours),
		nullString(a.Notes), now(), a.ID)
	if isUniqueConstraintError(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return &a, nil
}

// UpsertAllocation updates the row for the allocation's tuple if one
// exists, otherwise inserts. Used by the bulk grid-save path.
func (s *Store) UpsertAllocation(ctx context.Context, a engine.Allocation) (*engine.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM allocations
		 WHERE project_id = ? AND role_id = ? AND year = ? AND month = ? AND week = ?`,
		a.ProjectID, a.RoleID, a.Year, a.Month, a.Week)

	var existingID string
	err := row.Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		return s.insertAllocation(ctx, a)
	case err != nil:
		return nil, err
	}

	a.ID = existingID
	return s.updateAllocationLocked(ctx, a)
}

func (s *Store) DeleteAllocation(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "allocations", id)
}

// =============================================================================
// COUNTS - Dashboard overview
// =============================================================================

func (s *Store) CountProjects(ctx context.Context, archived bool) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM projects WHERE is_archived = ?`, archived)
}

func (s *Store) CountOngoingProjects(ctx context.Context) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM projects WHERE is_archived = FALSE AND is_ongoing = TRUE`)
}

func (s *Store) CountResources(ctx context.Context, active bool) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM resources WHERE is_active = ?`, active)
}

func (s *Store) CountAllocations(ctx context.Context) (int, error) {
	return s.countWhere(ctx, `SELECT COUNT(*) FROM allocations`)
}

func (s *Store) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// =============================================================================
// API KEYS
// =============================================================================

// APIKey is a stored API key record. The secret itself is never persisted,
// only its bcrypt hash and a short prefix for lookup.
type APIKey struct {
	ID         string
	Name       string
	KeyPrefix  string
	KeyHash    string
	IsActive   bool
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, key_prefix, key_hash, is_active, last_used_at, created_at
		 FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// FindAPIKeysByPrefix returns the active keys sharing a prefix. Prefixes
// are not unique by construction, so validation compares against each.
func (s *Store) FindAPIKeysByPrefix(ctx context.Context, prefix string) ([]APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, key_prefix, key_hash, is_active, last_used_at, created_at
		 FROM api_keys WHERE key_prefix = ? AND is_active = TRUE`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func scanAPIKey(rows *sql.Rows) (APIKey, error) {
	var k APIKey
	var lastUsed sql.NullString
	var created string
	if err := rows.Scan(&k.ID, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.IsActive,
		&lastUsed, &created); err != nil {
		return k, err
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		k.CreatedAt = t
	}
	if lastUsed.Valid {
		if t, err := time.Parse(time.RFC3339, lastUsed.String); err == nil {
			k.LastUsedAt = &t
		}
	}
	return k, nil
}

func (s *Store) SaveAPIKey(ctx context.Context, k APIKey) (*APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k.ID == "" {
		k.ID = newID()
	}
	k.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key_prefix, key_hash, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		k.ID, k.Name, k.KeyPrefix, k.KeyHash, k.IsActive,
		k.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// TouchAPIKey records a successful use.
func (s *Store) TouchAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, now(), id)
	return err
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "api_keys", id)
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value_json FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *Store) PutSetting(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value_json) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json`,
		key, string(raw))
	return err
}

// =============================================================================
// SHARED
// =============================================================================

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
