// Package store keeps a local SQLite mirror of the Jobo job feed.
//
// Jobs are stored by id with a few indexed columns for querying and the full
// JSON payload for round tripping. A small key/value table holds sync
// checkpoints.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jobo-ai/jobo-go/jobo"
)

// ErrJobNotFound is returned when a job id is not in the mirror
var ErrJobNotFound = errors.New("job not found")

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	company    TEXT NOT NULL,
	source     TEXT NOT NULL,
	source_id  TEXT NOT NULL,
	is_remote  INTEGER NOT NULL,
	posted_at  TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_source ON jobs (source, source_id);
CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs (posted_at);
CREATE TABLE IF NOT EXISTS sync_state (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store is a SQLite backed job mirror
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the mirror database at path and applies the
// schema
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertJobs inserts or replaces jobs in a single transaction
func (s *Store) UpsertJobs(ctx context.Context, jobs []jobo.Job) (err error) {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (id, title, company, source, source_id, is_remote, posted_at, updated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			source = excluded.source,
			source_id = excluded.source_id,
			is_remote = excluded.is_remote,
			posted_at = excluded.posted_at,
			updated_at = excluded.updated_at,
			payload = excluded.payload`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, job := range jobs {
		payload, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
		}
		if _, err = stmt.ExecContext(ctx,
			job.ID.String(), job.Title, job.Company.Name, job.Source, job.SourceID,
			job.IsRemote, formatTime(job.PostedAt()), formatTime(job.UpdatedAt), string(payload),
		); err != nil {
			return fmt.Errorf("failed to upsert job %s: %w", job.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteJobs removes jobs by id and reports how many were present
func (s *Store) DeleteJobs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete jobs: %w", err)
	}
	return res.RowsAffected()
}

// Job loads a mirrored job by id
func (s *Store) Job(ctx context.Context, id uuid.UUID) (*jobo.Job, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM jobs WHERE id = ?`, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var job jobo.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("invalid payload for job %s: %w", id, err)
	}
	return &job, nil
}

// Count returns the number of mirrored jobs
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Checkpoint returns the time recorded under name. ok is false when nothing
// has been recorded yet.
func (s *Store) Checkpoint(ctx context.Context, name string) (t time.Time, ok bool, err error) {
	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	t, err = time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid checkpoint %q: %w", name, err)
	}
	return t, true, nil
}

// SetCheckpoint records t under name
func (s *Store) SetCheckpoint(ctx context.Context, name string, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, formatTime(t),
	)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
