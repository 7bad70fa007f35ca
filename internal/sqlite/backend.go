package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Backend implements types.RecordStore on a SQLite database file.
// Each operation runs in its own transaction; mu serializes writers inside
// the process so they never surface SQLITE_BUSY to callers.
type Backend struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ types.RecordStore = (*Backend)(nil)

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("creating data directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr("opening database", err)
	}
	// A single connection keeps pragmas and transactions on one handle.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, storageErr("applying pragma", err)
		}
	}

	b := &Backend{
		db:   db,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}
	if err := b.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// EnsureSchema creates missing tables. Safe to call repeatedly.
func (b *Backend) EnsureSchema() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ddl := range schemaDDL {
		if _, err := b.db.Exec(ddl); err != nil {
			return storageErr("creating schema", err)
		}
	}
	return nil
}

// Path returns the database file location.
func (b *Backend) Path() string { return b.path }

// Close releases the database handle. Close is idempotent.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return storageErr("closing database", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success.
// The caller must hold b.mu for writing.
func (b *Backend) withTx(fn func(tx *sql.Tx) error) error {
	if b.db == nil {
		return storageErr("begin", errClosed)
	}
	tx, err := b.db.Begin()
	if err != nil {
		return storageErr("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("committing transaction", err)
	}
	return nil
}

var errClosed = errors.New("database is closed")

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrStorage, op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
