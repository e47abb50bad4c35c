// Package benchstore persists tether stress-run results in an embedded
// SQLite database so runs can be compared across invocations.
package benchstore

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store errors.
var (
	ErrClosed     = errors.New("results store is closed")
	ErrInvalidRun = errors.New("invalid run record")
)

// Run is one recorded stress-tool invocation.
type Run struct {
	// RunID is a UUID v7, generated on Record when empty.
	RunID string

	// Scenario names the op mix that was exercised.
	Scenario string

	// Goroutines is the worker count the run used.
	Goroutines int

	// Ops is the total number of table operations performed.
	Ops int64

	// Failures counts operations that returned an unexpected error.
	Failures int64

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// CreatedAt is the timestamp of the run.
	CreatedAt time.Time
}

// Store wraps the results database. Safe for concurrent use.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Open opens (creating if necessary) the results database at path and
// applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts a run. When RunID is empty a UUID v7 is generated; when
// CreatedAt is zero the current time is used. Returns the run ID.
func (s *Store) Record(run *Run) (string, error) {
	if run == nil || run.Scenario == "" {
		return "", ErrInvalidRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return "", ErrClosed
	}

	if run.RunID == "" {
		run.RunID = newUUID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, scenario, goroutines, ops, failures, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Scenario, run.Goroutines, run.Ops, run.Failures,
		run.Duration.Nanoseconds(), run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return run.RunID, nil
}

// List returns all recorded runs, newest first.
func (s *Store) List() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(`
		SELECT run_id, scenario, goroutines, ops, failures, duration_ns, created_at
		FROM runs ORDER BY created_at DESC, run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("fetching runs: %w", err)
	}
	defer rows.Close()

	var results []*Run
	for rows.Next() {
		var r Run
		var durationNS int64
		var createdAt string
		if err := rows.Scan(&r.RunID, &r.Scenario, &r.Goroutines, &r.Ops,
			&r.Failures, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Duration = time.Duration(durationNS)
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run created_at: %w", err)
		}
		results = append(results, &r)
	}
	if results == nil {
		results = []*Run{}
	}
	return results, rows.Err()
}

// Close releases the database. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
