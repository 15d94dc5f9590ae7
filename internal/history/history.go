// Package history persists build report summaries across runs.
//
// Documents themselves are never persisted (every build re-parses the source
// tree); only the run summaries survive, for `quill history` and the daemon
// status endpoint.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pradyumna2905/quill/internal/site"
)

// Entry is one recorded build run.
type Entry struct {
	ID       int64             `json:"id"`
	BuildID  string            `json:"build_id"`
	Recorded time.Time         `json:"recorded"`
	Outcome  site.BuildOutcome `json:"outcome"`
	Report   *site.BuildReport `json:"report"`
}

// Store records build reports in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates a history store. Use ":memory:" for an in-memory database, or
// a file path for persistent storage.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		recorded INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_recorded ON builds(recorded);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Append records a finished build report.
func (s *Store) Append(ctx context.Context, report *site.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, recorded, outcome, report) VALUES (?, ?, ?, ?)",
		report.BuildID, time.Now().Unix(), string(report.Outcome), payload,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns the most recent n build entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, recorded, outcome, report FROM builds ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recorded int64
		var payload []byte
		if err := rows.Scan(&e.ID, &e.BuildID, &recorded, &e.Outcome, &payload); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		e.Recorded = time.Unix(recorded, 0)
		var report site.BuildReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		e.Report = &report
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Latest returns the most recent entry, or nil when no builds are recorded.
func (s *Store) Latest(ctx context.Context) (*Entry, error) {
	entries, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}
