package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/models"
)

// setupTestDB creates an in-memory database with the current schema
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory(context.Background())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { db.Close() })
	return db
}

// recordingNotifier remembers every table it was told about
type recordingNotifier struct {
	mu     sync.Mutex
	tables []string
}

func (r *recordingNotifier) Notify(tables ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = append(r.tables, tables...)
}

func (r *recordingNotifier) reset() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.tables
	r.tables = nil
	return out
}

func createTask(t *testing.T, db *DB, title string, priority int) models.Task {
	t.Helper()
	task := models.NewTask(title, "", priority)
	require.NoError(t, db.InsertTask(context.Background(), &task))
	return task
}

func createUser(t *testing.T, db *DB, email, name string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "secret1", FullName: name}
	_, err := db.InsertUser(context.Background(), &u)
	require.NoError(t, err)
	return u
}
