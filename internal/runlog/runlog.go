// Package runlog persists finalized import summaries so past runs stay
// inspectable after the process exits.
package runlog

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kalambet/dayone2notes/internal/importer"
	"github.com/kalambet/dayone2notes/internal/journal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Run is one finalized import run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	ExportDir  string
	Folder     string
	DryRun     bool
	Cancelled  bool

	Attempted     int
	Succeeded     int
	Failed        int
	Skipped       int
	DegradedDates int
	TagFailures   int
}

// NewRun allocates a run record with a fresh ID and start time.
func NewRun(exportDir, folder string, dryRun bool) Run {
	return Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		ExportDir: exportDir,
		Folder:    folder,
		DryRun:    dryRun,
	}
}

// Store wraps a SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run log database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "dayone2notes.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// AppliedMigrations returns the applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// SaveRun stores a finalized run together with its summary details, in one
// transaction so a run is never half-recorded.
func (s *Store) SaveRun(run Run, summary *importer.Summary) error {
	run.FinishedAt = run.FinishedAt.UTC()
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, export_dir, folder, dry_run, cancelled,
			attempted, succeeded, failed, skipped, degraded_dates, tag_failures)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339),
		run.ExportDir, run.Folder, boolInt(run.DryRun), boolInt(summary.Cancelled),
		summary.Attempted, summary.Succeeded, summary.Failed, summary.Skipped,
		summary.DegradedDates, summary.TagFailures,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, e := range summary.EntryErrors {
		if _, err := tx.Exec(`INSERT INTO run_errors (run_id, entry_id, message) VALUES (?, ?, ?)`,
			run.ID, e.EntryID, e.Message); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting run error: %w", err)
		}
	}
	for _, f := range summary.FailedFiles {
		if _, err := tx.Exec(`INSERT INTO run_errors (run_id, entry_id, message) VALUES (?, '', ?)`,
			run.ID, fmt.Sprintf("unparseable file %s: %s", f.Path, f.Message)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting file error: %w", err)
		}
	}
	for _, u := range summary.UnresolvedMedia {
		if _, err := tx.Exec(`INSERT INTO run_unresolved_media (run_id, entry_id, kind, identifier) VALUES (?, ?, ?, ?)`,
			run.ID, u.EntryID, string(u.Kind), u.Identifier); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting unresolved media: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	var r Run
	var startedAt, finishedAt string
	var dryRun, cancelled int
	err := s.db.QueryRow(`
		SELECT id, started_at, finished_at, export_dir, folder, dry_run, cancelled,
			attempted, succeeded, failed, skipped, degraded_dates, tag_failures
		FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &startedAt, &finishedAt, &r.ExportDir, &r.Folder, &dryRun, &cancelled,
		&r.Attempted, &r.Succeeded, &r.Failed, &r.Skipped, &r.DegradedDates, &r.TagFailures)
	if err == sql.ErrNoRows {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return Run{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
		return Run{}, fmt.Errorf("parsing finished_at: %w", err)
	}
	r.DryRun = dryRun != 0
	r.Cancelled = cancelled != 0
	return r, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, export_dir, folder, dry_run, cancelled,
			attempted, succeeded, failed, skipped, degraded_dates, tag_failures
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		var r Run
		var startedAt, finishedAt string
		var dryRun, cancelled int
		if err := rows.Scan(&r.ID, &startedAt, &finishedAt, &r.ExportDir, &r.Folder, &dryRun, &cancelled,
			&r.Attempted, &r.Succeeded, &r.Failed, &r.Skipped, &r.DegradedDates, &r.TagFailures); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339, finishedAt); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		r.DryRun = dryRun != 0
		r.Cancelled = cancelled != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunErrors returns the recorded error lines for a run.
func (s *Store) RunErrors(runID string) ([]importer.EntryError, error) {
	rows, err := s.db.Query(`SELECT entry_id, message FROM run_errors WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []importer.EntryError
	for rows.Next() {
		var e importer.EntryError
		if err := rows.Scan(&e.EntryID, &e.Message); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// RunUnresolvedMedia returns the unresolved media references for a run.
func (s *Store) RunUnresolvedMedia(runID string) ([]importer.UnresolvedMedia, error) {
	rows, err := s.db.Query(`SELECT entry_id, kind, identifier FROM run_unresolved_media WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []importer.UnresolvedMedia
	for rows.Next() {
		var u importer.UnresolvedMedia
		var kind string
		if err := rows.Scan(&u.EntryID, &kind, &u.Identifier); err != nil {
			return nil, err
		}
		u.Kind = journal.MediaKind(kind)
		results = append(results, u)
	}
	return results, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
