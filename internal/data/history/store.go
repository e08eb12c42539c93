// Package history persists registry load snapshots in sqlite.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
	// Fixed-width timestamps keep lexical and chronological order equal.
	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the history database at path. busyTimeout bounds
// how long sqlite waits on a locked database; zero means two seconds.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func projectKeyOrDefault(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

// SaveSnapshot inserts snapshot, replacing any row with the same ID.
func (s *Store) SaveSnapshot(projectKey string, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(snapshot.ID) == "" {
		return fmt.Errorf("snapshot id must not be empty")
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO registry_snapshots (
  id, project_key, schema_version, ts_utc, tool_version, schema_name, declared_version,
  package_count, class_count, registry_json, error_code, error_message
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  project_key=excluded.project_key,
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  tool_version=excluded.tool_version,
  schema_name=excluded.schema_name,
  declared_version=excluded.declared_version,
  package_count=excluded.package_count,
  class_count=excluded.class_count,
  registry_json=excluded.registry_json,
  error_code=excluded.error_code,
  error_message=excluded.error_message
`
	return s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.ID,
			projectKeyOrDefault(projectKey),
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(tsLayout),
			snapshot.ToolVersion,
			snapshot.SchemaName,
			snapshot.DeclaredVersion,
			snapshot.PackageCount,
			snapshot.ClassCount,
			snapshot.Registry,
			snapshot.ErrorCode,
			snapshot.ErrorMessage,
		)
		return err
	})
}

const selectColumns = `
SELECT
  id, project_key, schema_version, ts_utc, tool_version, schema_name, declared_version,
  package_count, class_count, registry_json, error_code, error_message
FROM registry_snapshots
WHERE project_key = ?`

// LoadSnapshots returns the snapshots of projectKey taken at or after
// since, oldest first. A zero since returns all of them.
func (s *Store) LoadSnapshots(projectKey string, since time.Time) ([]Snapshot, error) {
	query := selectColumns
	args := []any{projectKeyOrDefault(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(tsLayout))
	}
	query += " ORDER BY ts_utc ASC, id ASC"
	return s.query("load snapshots", query, args...)
}

// Latest returns up to limit snapshots of projectKey, newest first.
func (s *Store) Latest(projectKey string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		return []Snapshot{}, nil
	}
	query := selectColumns + " ORDER BY ts_utc DESC, id DESC LIMIT ?"
	return s.query("latest snapshots", query, projectKeyOrDefault(projectKey), limit)
}

// Prune deletes all but the keep newest snapshots of projectKey.
func (s *Store) Prune(projectKey string, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	var deleted int64
	err := s.withRetry("prune snapshots", func() error {
		res, err := s.db.Exec(`
DELETE FROM registry_snapshots
WHERE project_key = ?1 AND id NOT IN (
  SELECT id FROM registry_snapshots WHERE project_key = ?1
  ORDER BY ts_utc DESC, id DESC LIMIT ?2
)`, projectKeyOrDefault(projectKey), keep)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func (s *Store) query(op, query string, args ...any) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry(op, func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.ID,
			&snapshot.ProjectKey,
			&snapshot.SchemaVersion,
			&tsRaw,
			&snapshot.ToolVersion,
			&snapshot.SchemaName,
			&snapshot.DeclaredVersion,
			&snapshot.PackageCount,
			&snapshot.ClassCount,
			&snapshot.Registry,
			&snapshot.ErrorCode,
			&snapshot.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

// IsCorruptError reports whether err looks like a damaged database file.
func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
