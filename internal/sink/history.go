package sink

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
)

// BuildRecord is one row of build history.
type BuildRecord struct {
	BuildID     string
	Start       time.Time
	Duration    time.Duration
	Outcome     string
	Documents   int
	Compiled    int
	Failed      int
	Routes      int
	BrokenLinks int
	Digest      string
}

// NewBuildRecord summarizes a finished build.
func NewBuildRecord(r *pipeline.BuildReport) BuildRecord {
	return BuildRecord{
		BuildID:     r.BuildID,
		Start:       r.Start,
		Duration:    r.Duration(),
		Outcome:     string(r.Outcome),
		Documents:   r.Documents,
		Compiled:    r.Compiled,
		Failed:      len(r.Failures),
		Routes:      r.Routes,
		BrokenLinks: len(r.BrokenLinks),
		Digest:      r.Digest,
	}
}

// HistoryStore keeps build records in SQLite.
type HistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenHistory opens or creates the history database at path. Use ":memory:"
// for a throwaway store.
func OpenHistory(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	store := &HistoryStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		documents INTEGER NOT NULL,
		compiled INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		routes INTEGER NOT NULL,
		broken_links INTEGER NOT NULL,
		digest TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build.
func (s *HistoryStore) Record(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, outcome, documents, compiled, failed, routes, broken_links, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BuildID, rec.Start.UnixMilli(), rec.Duration.Milliseconds(), rec.Outcome,
		rec.Documents, rec.Compiled, rec.Failed, rec.Routes, rec.BrokenLinks, rec.Digest,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// List returns up to limit builds, newest first. limit <= 0 returns all.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, duration_ms, outcome, documents, compiled, failed, routes, broken_links, digest
		FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var startedMS, durationMS int64
		if err := rows.Scan(&rec.BuildID, &startedMS, &durationMS, &rec.Outcome,
			&rec.Documents, &rec.Compiled, &rec.Failed, &rec.Routes, &rec.BrokenLinks, &rec.Digest); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		rec.Start = time.UnixMilli(startedMS)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
