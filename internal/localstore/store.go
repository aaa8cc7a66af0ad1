// Package localstore is the on-device SQLite store behind the engine's
// repository contracts. It holds the authoritative local record: completed
// sessions, personal records, program cursors, mission progress, the
// active-session draft, and an outbox of operations awaiting remote sync.
//
// The engine is the store's only writer (single-writer precondition); a
// multi-device deployment would need compare-and-set guards this store does
// not implement.
package localstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/engine"
	_ "modernc.org/sqlite"
)

// Store wraps the local SQLite database.
type Store struct {
	db *sql.DB
}

// Compile-time checks: *Store backs the engine's repositories.
var (
	_ engine.HistoryRepository = (*Store)(nil)
	_ engine.MissionRepository = (*Store)(nil)
)

// Open opens (or creates) the store at dir/liftlog.db and applies the schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "liftlog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating local schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	program_id   TEXT NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	doc          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS personal_records (
	exercise_id TEXT PRIMARY KEY,
	weight_kg   REAL NOT NULL,
	reps        INTEGER NOT NULL,
	achieved_at TIMESTAMP NOT NULL,
	session_id  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cursors (
	program_id TEXT PRIMARY KEY,
	day_index  INTEGER NOT NULL,
	week       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS missions (
	id         TEXT PRIMARY KEY,
	program_id TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	target     REAL NOT NULL,
	status     TEXT NOT NULL,
	progress   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS draft (
	id  INTEGER PRIMARY KEY CHECK (id = 1),
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
