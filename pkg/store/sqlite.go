package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"tableflip.dev/sip/pkg/state"
)

// SQLiteFile is the database file name inside the data directory.
const SQLiteFile = "sip.db"

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`ALTER TABLE documents ADD COLUMN revision INTEGER NOT NULL DEFAULT 0`,
}

// SQLite stores the root document as a row of a single-table database.
type SQLite struct {
	db   *sqlx.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path, brings its
// schema up to date and checks that a write transaction can be started.
// Builds without cgo fail at Ping.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection keeps PRAGMAs and the single-writer model consistent.
	db.SetMaxOpenConns(1)

	s := newSQLite(db, path)
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newSQLite(db *sqlx.DB, path string) *SQLite {
	return &SQLite{db: db, path: path}
}

func (s *SQLite) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	if err := s.migrate(ctx); err != nil {
		return err
	}
	return s.probe(ctx)
}

// SchemaVersion reports the applied migration count.
func (s *SQLite) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("store: read schema version: %w", err)
	}
	return v, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("store: schema version %d is newer than this binary (%d)", current, len(migrations))
	}
	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("store: begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store: record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLite) probe(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: sqlite probe: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (key, body, updated_at) VALUES (?, '{}', '')`, probeKey); err != nil {
		return fmt.Errorf("store: sqlite probe write: %w", err)
	}
	return nil
}

// Name implements Backend.
func (s *SQLite) Name() string { return "sqlite" }

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

// Get implements Backend.
func (s *SQLite) Get(ctx context.Context) (*state.Root, error) {
	var body string
	err := s.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE key = ?`, RootKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: read root: %w", err)
	}
	r, err := decodeRoot([]byte(body))
	if err != nil {
		if qerr := s.quarantine(ctx, body); qerr != nil {
			return nil, fmt.Errorf("%w (backup failed: %v)", err, qerr)
		}
		return nil, err
	}
	return r, nil
}

// quarantine copies an unreadable root body to root.corrupt before the next
// write replaces it.
func (s *SQLite) quarantine(ctx context.Context, body string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at`,
		RootKey+corruptSuffix, body, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Put implements Backend.
func (s *SQLite) Put(ctx context.Context, doc *state.Root) error {
	data, err := state.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode root: %w", err)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin write: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (key, body, revision, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			revision = documents.revision + 1,
			updated_at = excluded.updated_at`,
		RootKey, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: write root: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit root: %w", err)
	}
	return nil
}

// Revision counts the writes the root document has received; zero when it
// has never been written.
func (s *SQLite) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.GetContext(ctx, &rev, `SELECT revision FROM documents WHERE key = ?`, RootKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read revision: %w", err)
	}
	return rev, nil
}

// Close implements Backend.
func (s *SQLite) Close() error {
	return s.db.Close()
}
