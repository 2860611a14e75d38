// Package history records version resolutions in a local sqlite database so
// firmware teams can map a binary back to the build that produced it.
package history

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/oleiade/autoversion/internal/resolver"
)

// DefaultLimit is the number of entries listed when no limit is given.
const DefaultLimit = 10

// MaxLimit caps the number of entries a single listing returns.
const MaxLimit = 100

// Entry is one recorded resolution.
type Entry struct {
	ID         string    `json:"id"`
	ResolvedAt time.Time `json:"resolved_at"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	Dirty      bool      `json:"dirty"`
	ExitCode   int       `json:"exit_code"`
	Duration   string    `json:"duration"`
}

// Store is a sqlite-backed resolution ledger.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at the given path and ensures
// the resolutions table exists. Unlike the resolver, the ledger is allowed
// to fail: the caller decides whether a missing ledger blocks anything
// (the CLI never lets it block the build).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS resolutions (
            id          TEXT PRIMARY KEY,
            resolved_at INTEGER NOT NULL,
            version     TEXT NOT NULL,
            source      TEXT NOT NULL,
            dirty       INTEGER NOT NULL,
            exit_code   INTEGER NOT NULL,
            duration    TEXT NOT NULL
        );
    `)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a resolution outcome and returns the generated entry id.
func (s *Store) Record(ctx context.Context, result *resolver.Result) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO resolutions (id, resolved_at, version, source, dirty, exit_code, duration)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		// Unix nanoseconds keep ORDER BY numeric; formatted timestamps
		// sort lexicographically and misorder sub-second neighbors.
		time.Now().UTC().UnixNano(),
		result.Version,
		result.Source,
		result.Dirty,
		result.ExitCode,
		result.Duration,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT id, resolved_at, version, source, dirty, exit_code, duration
        FROM resolutions
        ORDER BY resolved_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var resolvedAt int64
		if err := rows.Scan(&e.ID, &resolvedAt, &e.Version, &e.Source, &e.Dirty, &e.ExitCode, &e.Duration); err != nil {
			return nil, err
		}
		e.ResolvedAt = time.Unix(0, resolvedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
