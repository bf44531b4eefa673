// Package db owns the SQLite store: schema, migrations and the per-table queries.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Table names published to the Notifier after a committed write
const (
	TableUsers    = "users"
	TableTasks    = "tasks"
	TableComments = "comments"
	TableSettings = "settings"
)

// Notifier receives the names of the tables touched by a committed write.
type Notifier interface {
	Notify(tables ...string)
}

// DB wraps the database connection
type DB struct {
	*sql.DB
	notifier Notifier
}

// Open opens (creating if needed) the database at path and brings the schema
// up to CurrentVersion.
func Open(ctx context.Context, path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dsn := "file:" + path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	return open(ctx, dsn)
}

// OpenMemory opens a private in-memory database, mostly for tests.
func OpenMemory(ctx context.Context) (*DB, error) {
	return open(ctx, "file::memory:?_foreign_keys=on")
}

func open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps PRAGMA state and in-memory databases stable
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db := &DB{DB: conn}
	if err := db.migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		slog.Error("error closing db", "error", err)
	}
}

// SetNotifier registers the receiver of change notifications. It must be
// called before the handle is shared between goroutines.
func (db *DB) SetNotifier(n Notifier) {
	db.notifier = n
}

// changed tells the notifier which tables a write touched
func (db *DB) changed(tables ...string) {
	if db.notifier != nil {
		db.notifier.Notify(tables...)
	}
}
