package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (results table keyed by query hash)
const currentSchemaVersion = 1

// Store is a SQLite-backed cache of SPARQL execution outcomes, keyed by
// query hash. Re-runs look up the hash before touching the endpoint.
// Uses WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Result is one cached execution outcome. Exactly one of Values/Error is
// meaningful: a failed execution has an empty Values and a non-empty
// Error; a successful one has Error == "".
type Result struct {
	QueryHash string
	RunID     string
	Values    string // ";"-joined binding values, or "empty"
	Error     string
	CreatedAt time.Time
}

// Hash returns the cache key for a query string.
func Hash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Open creates or opens a cache database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get looks up the cached result for a query hash. The second return
// value reports whether a cached result exists.
func (s *Store) Get(ctx context.Context, queryHash string) (Result, bool, error) {
	var r Result
	var created string
	err := s.db.QueryRowContext(ctx, `
		SELECT query_hash, run_id, obj_values, error, created_at
		FROM results WHERE query_hash = ?`, queryHash).
		Scan(&r.QueryHash, &r.RunID, &r.Values, &r.Error, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, fmt.Errorf("get result: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		r.CreatedAt = t
	}
	return r, true, nil
}

// Put stores an execution outcome, replacing any previous entry for the
// same query hash.
func (s *Store) Put(ctx context.Context, r Result) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (query_hash, run_id, obj_values, error, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(query_hash) DO UPDATE SET
			run_id = excluded.run_id,
			obj_values = excluded.obj_values,
			error = excluded.error,
			created_at = excluded.created_at`,
		r.QueryHash, r.RunID, r.Values, r.Error, created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put result: %w", err)
	}
	return nil
}

// Count returns the number of cached results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
