package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/models"
)

// schemaV3 is the layout before accounts existed
const schemaV3 = `
	CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0,
		priority INTEGER NOT NULL DEFAULT 2
	);
	CREATE TABLE comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		text TEXT NOT NULL DEFAULT '',
		timestamp INTEGER NOT NULL
	);
	INSERT INTO tasks (title, priority) VALUES ('legacy task', 3);
	INSERT INTO comments (task_id, text, timestamp) VALUES (1, 'legacy comment', 1000);
`

// seedFile writes a database file at the given version using the raw driver
func seedFile(t *testing.T, ddl string, version int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tick.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	if ddl != "" {
		_, err = raw.Exec(ddl)
		require.NoError(t, err)
	}
	_, err = raw.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	require.NoError(t, err)
	return path
}

func openFile(t *testing.T, path string) *DB {
	t.Helper()
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFreshDatabaseGetsCurrentSchema(t *testing.T) {
	db := openFile(t, filepath.Join(t.TempDir(), "nested", "tick.db"))
	ctx := context.Background()

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, version)

	tables, err := db.tableNames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"users", "tasks", "comments", "settings"}, tables)
}

func TestMigrate3To4KeepsData(t *testing.T) {
	path := seedFile(t, schemaV3, 3)
	db := openFile(t, path)
	ctx := context.Background()

	version, err := db.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	tasks, err := db.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "legacy task", tasks[0].Title)

	comments, err := db.ListTaskComments(ctx, tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "legacy comment", comments[0].Text)
	assert.Nil(t, comments[0].UserID)
	assert.Empty(t, comments[0].UserFullName)

	// the new columns and table are usable
	u := models.User{Email: "a@b.com", Password: "secret1", FullName: "A"}
	_, err = db.InsertUser(ctx, &u)
	require.NoError(t, err)
	c := models.NewComment(tasks[0].ID, &u.ID, u.FullName, "new")
	require.NoError(t, db.InsertComment(ctx, &c))
}

func TestMigrationIsIdempotentOnReopen(t *testing.T) {
	path := seedFile(t, schemaV3, 3)
	first, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	db := openFile(t, path)
	tasks, err := db.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestUnknownVersionGapRecreates(t *testing.T) {
	for _, version := range []int{1, 2, CurrentVersion + 1} {
		t.Run(fmt.Sprintf("v%d", version), func(t *testing.T) {
			path := seedFile(t, schemaV3, version)
			db := openFile(t, path)
			ctx := context.Background()

			got, err := db.SchemaVersion(ctx)
			require.NoError(t, err)
			assert.Equal(t, CurrentVersion, got)

			count, err := db.TaskCount(ctx)
			require.NoError(t, err)
			assert.Zero(t, count, "destructive fallback discards old rows")

			_, err = db.UserCount(ctx)
			assert.NoError(t, err)
		})
	}
}

func TestUnversionedTablesRecreate(t *testing.T) {
	path := seedFile(t, schemaV3, 0)
	db := openFile(t, path)

	count, err := db.TaskCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestHasPath(t *testing.T) {
	assert.True(t, hasPath(3))
	assert.False(t, hasPath(2))
	assert.False(t, hasPath(0))
	assert.True(t, hasPath(CurrentVersion))
}
