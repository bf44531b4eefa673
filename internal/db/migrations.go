package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// CurrentVersion is the schema version this build reads and writes
const CurrentVersion = 4

// migration upgrades the schema from one version to the next
type migration func(ctx context.Context, tx *sql.Tx) error

// migrations maps a starting version to the step that upgrades it by one.
// A gap with no registered step falls back to recreating the schema.
var migrations = map[int]migration{
	3: migrate3To4,
}

// migrate brings the schema up to CurrentVersion
func (db *DB) migrate(ctx context.Context) error {
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if version == CurrentVersion {
		return nil
	}

	if version == 0 {
		empty, err := db.isEmpty(ctx)
		if err != nil {
			return err
		}
		if empty {
			return db.createSchema(ctx)
		}
	}

	if version > CurrentVersion || !hasPath(version) {
		slog.Warn("no migration path, recreating database",
			"from_version", version,
			"to_version", CurrentVersion)
		return db.recreate(ctx)
	}

	for v := version; v < CurrentVersion; v++ {
		if err := db.applyMigration(ctx, v, migrations[v]); err != nil {
			return fmt.Errorf("migration %d->%d: %w", v, v+1, err)
		}
		slog.Info("migrated database", "from_version", v, "to_version", v+1)
	}
	return nil
}

// hasPath reports whether every step from version to CurrentVersion is registered
func hasPath(version int) bool {
	if version <= 0 {
		return false
	}
	for v := version; v < CurrentVersion; v++ {
		if _, ok := migrations[v]; !ok {
			return false
		}
	}
	return true
}

func (db *DB) applyMigration(ctx context.Context, from int, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", from+1)); err != nil {
		return err
	}
	return tx.Commit()
}

// migrate3To4 adds the users table and the comment author columns
func migrate3To4(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT,
			password TEXT,
			full_name TEXT
		)
	`)
	if err != nil {
		return err
	}

	columns := []struct {
		name string
		ddl  string
	}{
		{"user_id", "ALTER TABLE comments ADD COLUMN user_id INTEGER REFERENCES users(id) ON DELETE SET NULL"},
		{"user_full_name", "ALTER TABLE comments ADD COLUMN user_full_name TEXT"},
	}
	for _, col := range columns {
		exists, err := columnExists(ctx, tx, "comments", col.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, col.ddl); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// createSchema creates every table and stamps the current version
func (db *DB) createSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return db.setSchemaVersion(ctx, CurrentVersion)
}

// recreate drops every table and builds the schema from scratch. All data is lost.
func (db *DB) recreate(ctx context.Context) error {
	tables, err := db.tableNames(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	for _, table := range tables {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
			return err
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	return db.createSchema(ctx)
}

// SchemaVersion returns the stored schema version (0 for a new file)
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

func (db *DB) setSchemaVersion(ctx context.Context, version int) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}

func (db *DB) isEmpty(ctx context.Context) (bool, error) {
	tables, err := db.tableNames(ctx)
	if err != nil {
		return false, err
	}
	return len(tables) == 0, nil
}

func (db *DB) tableNames(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
