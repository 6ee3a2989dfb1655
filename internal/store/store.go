// Package store provides the SQLite persistence layer shared by the HTTP API
// and the admin CLI: schema introspection, table mutation, record editing,
// user accounts, and the admin operation log.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps a single SQLite database handle. One Store is opened per
// process and passed explicitly to everything that touches the database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path, creating the file if it does not
// exist. Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for the SQL prompt and for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ready() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	return nil
}
