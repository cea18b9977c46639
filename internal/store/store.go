// Package store manages the SQLite database that persists theme selections
// across restarts.
//
// Only this package may open or query the database. All other packages receive
// a [*Store] and call its methods. The store is deliberately forgiving: a
// backing-store failure degrades to in-memory-only operation (selections stop
// surviving restarts) instead of surfacing errors into the UI path.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/pptforge/themesync/internal/mode"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    namespace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (namespace, key)
);
`

// ErrUnavailable is returned by write paths that need to report failure (see
// [Store.SaveSelection]) when the backing store cannot be used. Best-effort
// paths log instead of returning it.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the SQLite-backed key/value repository. Keys live in namespaces;
// the on-disk identity of a record is "{namespace}-{key}", matching the flat
// keys earlier releases wrote.
type Store struct {
	log    *slog.Logger
	prefix string

	mu       sync.Mutex
	db       *sql.DB // nil when the store is degraded
	degraded bool
	lastErr  error
}

// DefaultDBPath returns the default path for the selection database:
// ~/.local/share/themesync/themes.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "themesync", "themes.db"), nil
}

// Open opens (or creates) the SQLite database at path, applies the schema, and
// configures WAL mode. prefix namespaces all selection keys; pass "" for the
// default ("ai-ppt").
func Open(path, prefix string, logger *slog.Logger) (*Store, error) {
	if prefix == "" {
		prefix = mode.DefaultPrefix
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	// Single writer to avoid SQLITE_BUSY under WAL.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, prefix: prefix, log: logger}, nil
}

// OpenBestEffort is Open with graceful degradation: if the database cannot be
// opened the returned store operates in degraded mode, where reads report
// absent and writes are dropped with a warning. The caller always gets a
// usable store.
func OpenBestEffort(path, prefix string, logger *slog.Logger) *Store {
	s, err := Open(path, prefix, logger)
	if err != nil {
		logger.Warn("store unavailable, theme selections will not persist", "path", path, "error", err)
		if prefix == "" {
			prefix = mode.DefaultPrefix
		}
		return &Store{prefix: prefix, log: logger, degraded: true, lastErr: err}
	}
	return s
}

// Close releases the underlying database connection.
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

// Prefix returns the namespace prefix this store was opened with.
func (s *Store) Prefix() string { return s.prefix }

// Degraded reports whether the store has lost durability. Once degraded at
// open time it stays degraded; a failed individual write marks the store
// degraded until a later write succeeds.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// LastErr returns the most recent backing-store error, or nil.
func (s *Store) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Get returns the value stored under (namespace, key), or ("", false) if the
// record is absent. Backing-store errors are logged and reported as absent.
func (s *Store) Get(ctx context.Context, namespace, key string) (string, bool) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return "", false
	}

	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.noteErr(err)
		s.log.Warn("store read failed", "namespace", namespace, "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Set writes (namespace, key) = value, best-effort. Failures are logged and
// swallowed; the in-memory state of the application keeps operating without
// durability for that write.
func (s *Store) Set(ctx context.Context, namespace, key, value string) {
	if err := s.set(ctx, namespace, key, value); err != nil {
		s.log.Warn("store write failed, continuing without durability",
			"namespace", namespace, "key", key, "error", err)
	}
}

// Delete removes (namespace, key), best-effort.
func (s *Store) Delete(ctx context.Context, namespace, key string) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return
	}
	if _, err := db.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
		s.noteErr(err)
		s.log.Warn("store delete failed", "namespace", namespace, "key", key, "error", err)
	}
}

// Keys returns all keys present in the namespace, sorted by key. Used by the
// status command; errors are returned rather than swallowed since this is an
// operator path, not a UI path.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, ErrUnavailable
	}

	rows, err := db.QueryContext(ctx,
		`SELECT key FROM kv WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("listing keys in %q: %w", namespace, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key row: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// set is the error-returning write used by Set and SaveSelection.
func (s *Store) set(ctx context.Context, namespace, key, value string) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return ErrUnavailable
	}

	_, err := db.ExecContext(ctx, upsertSQL, namespace, key, value, formatTime(nowFunc()))
	if err != nil {
		s.noteErr(err)
		return fmt.Errorf("writing %s/%s: %w", namespace, key, err)
	}
	s.noteOK()
	return nil
}

const upsertSQL = `
	INSERT INTO kv (namespace, key, value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (namespace, key) DO UPDATE SET
	    value      = excluded.value,
	    updated_at = excluded.updated_at`

func (s *Store) noteErr(err error) {
	s.mu.Lock()
	s.degraded = true
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) noteOK() {
	s.mu.Lock()
	s.degraded = false
	s.lastErr = nil
	s.mu.Unlock()
}

// nowFunc is swapped out by tests that assert on updated_at values.
var nowFunc = time.Now

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
