package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Run is one archived pipeline run.
type Run struct {
	ID         string
	StartedAt  time.Time
	ProjectDir string
	Config     types.Config
	Steps      []StepInfo
}

// StepInfo describes one archived step table.
type StepInfo struct {
	Step    int
	Columns int
	Total   int
	Active  int
	SavedAt time.Time
}

// Archive stores step link tables in SQLite. It must be attached before
// use; all methods are safe for concurrent use.
type Archive struct {
	mu       sync.RWMutex
	attached bool
	path     string
	db       *sql.DB
}

// NewArchive creates a detached archive.
func NewArchive() *Archive {
	return &Archive{}
}

// Attach opens (creating if needed) the archive database at path.
// Returns ErrAlreadyAttached if already attached.
func (a *Archive) Attach(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.attached {
		return types.ErrAlreadyAttached
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	// PRAGMAs are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating archive schema: %w", err)
		}
	}

	a.db = db
	a.path = path
	a.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (a *Archive) Detach() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return err
	}
	a.db = nil
	a.attached = false
	return nil
}

// Path returns the database file of an attached archive.
func (a *Archive) Path() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.path
}

// generateRunID returns a time-ordered UUID v7.
func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BeginRun records a new run with its configuration and returns its id.
func (a *Archive) BeginRun(cfg types.Config) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return "", types.ErrArchiveDetached
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding run config: %w", err)
	}
	id := generateRunID()
	_, err = a.db.Exec(
		"INSERT INTO runs (run_id, started_at, project_dir, config) VALUES (?, ?, ?, ?)",
		id, formatTime(time.Now()), cfg.ProjectDir, string(raw),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// SaveStep archives the link table written by step of run. A step is
// archived once per run; a second save returns ErrStepArchived.
func (a *Archive) SaveStep(runID string, step int, t *linktable.Table) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.attached {
		return types.ErrArchiveDetached
	}
	if err := a.requireRun(runID); err != nil {
		return err
	}

	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM step_tables WHERE run_id = ? AND step = ?", runID, step).Scan(&n); err != nil {
		return fmt.Errorf("checking step %d: %w", step, err)
	}
	if n > 0 {
		return fmt.Errorf("run %s step %d: %w", runID, step, types.ErrStepArchived)
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	sum := t.Summarize()
	_, err = tx.Exec(
		"INSERT INTO step_tables (run_id, step, columns, total_links, active_links, saved_at) VALUES (?, ?, ?, ?, ?, ?)",
		runID, step, t.Columns(), sum.Total, sum.Active, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("inserting step %d: %w", step, err)
	}
	if err := insertLinks(tx, runID, step, t.Links()); err != nil {
		return fmt.Errorf("archiving step %d links: %w", step, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing step %d: %w", step, err)
	}
	return nil
}

// LoadStep returns the archived link table of step in run.
func (a *Archive) LoadStep(runID string, step int) (*linktable.Table, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.attached {
		return nil, types.ErrArchiveDetached
	}
	var columns int
	err := a.db.QueryRow("SELECT columns FROM step_tables WHERE run_id = ? AND step = ?", runID, step).Scan(&columns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s step %d: %w", runID, step, types.ErrStepNotArchived)
	}
	if err != nil {
		return nil, fmt.Errorf("reading step %d: %w", step, err)
	}

	links, err := selectLinks(a.db, runID, step)
	if err != nil {
		return nil, fmt.Errorf("reading step %d links: %w", step, err)
	}
	t := linktable.New(links...)
	if columns == linktable.WideColumns {
		t.MarkWide()
	}
	return t, nil
}

// Runs lists all runs, newest first, with their archived steps.
func (a *Archive) Runs() ([]Run, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.attached {
		return nil, types.ErrArchiveDetached
	}
	return a.queryRuns("SELECT run_id, started_at, project_dir, config FROM runs ORDER BY started_at DESC, run_id DESC")
}

// LatestRun returns the most recently started run.
func (a *Archive) LatestRun() (Run, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.attached {
		return Run{}, types.ErrArchiveDetached
	}
	runs, err := a.queryRuns("SELECT run_id, started_at, project_dir, config FROM runs ORDER BY started_at DESC, run_id DESC LIMIT 1")
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, types.ErrRunNotFound
	}
	return runs[0], nil
}

// GetRun returns the run with id.
func (a *Archive) GetRun(id string) (Run, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.attached {
		return Run{}, types.ErrArchiveDetached
	}
	runs, err := a.queryRuns("SELECT run_id, started_at, project_dir, config FROM runs WHERE run_id = ?", id)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("run %s: %w", id, types.ErrRunNotFound)
	}
	return runs[0], nil
}

// The caller must hold a.mu.
func (a *Archive) requireRun(runID string) error {
	var n int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM runs WHERE run_id = ?", runID).Scan(&n); err != nil {
		return fmt.Errorf("looking up run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, types.ErrRunNotFound)
	}
	return nil
}

// The caller must hold a.mu.
func (a *Archive) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		var r Run
		var started, raw string
		if err := rows.Scan(&r.ID, &started, &r.ProjectDir, &raw); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if err := json.Unmarshal([]byte(raw), &r.Config); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decoding run %s config: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		steps, err := a.querySteps(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Steps = steps
	}
	return runs, nil
}

// The caller must hold a.mu.
func (a *Archive) querySteps(runID string) ([]StepInfo, error) {
	rows, err := a.db.Query(
		"SELECT step, columns, total_links, active_links, saved_at FROM step_tables WHERE run_id = ? ORDER BY step",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	var steps []StepInfo
	for rows.Next() {
		var s StepInfo
		var saved string
		if err := rows.Scan(&s.Step, &s.Columns, &s.Total, &s.Active, &saved); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		s.SavedAt = parseTime(saved)
		steps = append(steps, s)
	}
	return steps, rows.Err()
}
