package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createFlagsTable = `CREATE TABLE IF NOT EXISTS flags (
	key TEXT PRIMARY KEY,
	set_at TIMESTAMP NOT NULL
)`

// FlagStore keeps flags in a local SQLite file, for single-box deployments
// without Redis or Postgres.
type FlagStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the flags table exists.
func Open(ctx context.Context, path string) (*FlagStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createFlagsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create flags table: %w", err)
	}
	return &FlagStore{db: db, now: time.Now}, nil
}

func (s *FlagStore) Get(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM flags WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite get flag: %w", err)
	}
	return true, nil
}

func (s *FlagStore) Set(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO flags (key, set_at) VALUES (?, ?)`, key, s.now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite set flag: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *FlagStore) Close() error {
	return s.db.Close()
}
