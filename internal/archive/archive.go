// Package archive provides SQLite-backed storage for terminal task
// results. The coordination engine hands completed and failed tasks to
// the archive so their results outlive the in-memory registries.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/89pl/strixer/pkg/models"
)

// Store wraps an SQLite database holding archived task results.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns the archive location under the project root.
func DefaultPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".strixer", "archive.db")
}

// Open opens an SQLite database at the given path, creating parent
// directories if they don't exist. WAL mode is enabled for concurrent
// reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Migrate applies all pending schema migrations.
func (s *Store) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Results},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Results = `
CREATE TABLE IF NOT EXISTS task_results (
	task_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	assigned_to TEXT,
	tags TEXT,
	result TEXT,
	completed_at DATETIME NOT NULL,
	archived_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_task_results_status ON task_results(status);
CREATE INDEX IF NOT EXISTS idx_task_results_assigned_to ON task_results(assigned_to);
`

// Result is one archived terminal task.
type Result struct {
	TaskID      string
	Title       string
	Priority    models.Priority
	Status      models.TaskStatus
	AssignedTo  string
	Tags        []string
	Result      string
	CompletedAt time.Time
	ArchivedAt  time.Time
}

// SaveResult archives a terminal task. Saving the same task again
// overwrites the earlier row. Non-terminal tasks are rejected.
func (s *Store) SaveResult(task *models.Task) error {
	if !task.Status.Terminal() {
		return fmt.Errorf("task %s has non-terminal status %s", task.ID, task.Status)
	}

	completedAt := time.Time{}
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO task_results (task_id, title, priority, status, assigned_to, tags, result, completed_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			status = excluded.status,
			result = excluded.result,
			completed_at = excluded.completed_at,
			archived_at = excluded.archived_at
	`, task.ID, task.Title, string(task.Priority), string(task.Status), task.AssignedTo,
		strings.Join(task.Tags, ","), task.Result, formatTime(completedAt), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save result for task %s: %w", task.ID, err)
	}
	return nil
}

// Results returns archived results, newest completion first.
func (s *Store) Results() ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT task_id, title, priority, status, assigned_to, tags, result, completed_at, archived_at
		FROM task_results
		ORDER BY completed_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var priority, status, tags, completedAt, archivedAt string
		var assignedTo sql.NullString
		if err := rows.Scan(&r.TaskID, &r.Title, &priority, &status, &assignedTo, &tags, &r.Result, &completedAt, &archivedAt); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		r.Priority = models.Priority(priority)
		r.Status = models.TaskStatus(status)
		r.AssignedTo = assignedTo.String
		if tags != "" {
			r.Tags = strings.Split(tags, ",")
		}
		if t, err := parseTime(completedAt); err == nil {
			r.CompletedAt = t
		}
		if t, err := parseTime(archivedAt); err == nil {
			r.ArchivedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Purge deletes results archived before the cutoff. Returns the number
// of rows deleted.
func (s *Store) Purge(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec(`DELETE FROM task_results WHERE archived_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old results: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return count, nil
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
