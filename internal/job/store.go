package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// schemaVersion is bumped whenever the schema changes. Databases with a
// different version are rejected rather than migrated.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE jobs (
    id                TEXT PRIMARY KEY,
    filename          TEXT NOT NULL,
    status            TEXT NOT NULL,
    error             TEXT NOT NULL DEFAULT '',
    warnings_json     TEXT NOT NULL DEFAULT '[]',
    original_language TEXT NOT NULL DEFAULT '',
    created_at        TEXT NOT NULL,
    updated_at        TEXT NOT NULL
);

CREATE INDEX idx_jobs_status ON jobs(status);

CREATE TABLE schema_version (
    version INTEGER NOT NULL
);
`

// Store manages job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the job database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Create inserts a new pending job for a source file and returns it.
func (s *Store) Create(ctx context.Context, filename string) (*Job, error) {
	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, filename, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, filename, StatusPending, timestamp, timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns the job with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, status, error, warnings_json, original_language,
                created_at, updated_at
         FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// List returns all jobs, newest first.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, status, error, warnings_json, original_language,
                created_at, updated_at
         FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// MarkProcessing transitions a job to processing and clears any previous
// error.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, error = '', updated_at = ? WHERE id = ?`,
		StatusProcessing, now(), id)
}

// MarkCompleted transitions a job to completed with its final warnings and
// detected original language.
func (s *Store) MarkCompleted(ctx context.Context, id string, warnings []string, originalLanguage string) error {
	warningsJSON, err := marshalWarnings(warnings)
	if err != nil {
		return err
	}
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, error = '', warnings_json = ?,
                original_language = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, warningsJSON, originalLanguage, now(), id)
}

// MarkFailed transitions a job to failed with the failure message and any
// warnings collected before the failure.
func (s *Store) MarkFailed(ctx context.Context, id, errorMessage string, warnings []string, originalLanguage string) error {
	warningsJSON, err := marshalWarnings(warnings)
	if err != nil {
		return err
	}
	return s.update(ctx, id,
		`UPDATE jobs SET status = ?, error = ?, warnings_json = ?,
                original_language = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, errorMessage, warningsJSON, originalLanguage, now(), id)
}

func (s *Store) update(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("update job %s: %w", id, ErrNotFound)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func marshalWarnings(warnings []string) (string, error) {
	if warnings == nil {
		warnings = []string{}
	}
	data, err := json.Marshal(warnings)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		j            Job
		warningsJSON string
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(&j.ID, &j.Filename, &j.Status, &j.Error, &warningsJSON,
		&j.OriginalLanguage, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if err := json.Unmarshal([]byte(warningsJSON), &j.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings for job %s: %w", j.ID, err)
	}
	if j.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for job %s: %w", j.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for job %s: %w", j.ID, err)
	}
	return &j, nil
}
