package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/models"
)

func TestInsertUserReturnsID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := models.User{Email: "a@b.com", Password: "hunter2", FullName: "A B"}
	id, err := db.InsertUser(ctx, &u)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, u.ID)

	got, err := db.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, u, *got)

	got, err = db.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestInsertUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createUser(t, db, "a@b.com", "First")

	dup := models.User{Email: "a@b.com", Password: "other1", FullName: "Second"}
	id, err := db.InsertUser(ctx, &dup)
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Zero(t, id)

	count, err := db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertUserConcurrentSameEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := models.User{Email: "race@b.com", Password: "secret1", FullName: "Racer"}
			if _, err := db.InsertUser(ctx, &u); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	count, err := db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetUserByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = db.GetUserByID(ctx, 77)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createUser(t, db, "a@b.com", "Old Name")
	u.FullName = "New Name"
	u.Password = "changed1"
	require.NoError(t, db.UpdateUser(ctx, u))

	got, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.FullName)
	assert.Equal(t, "changed1", got.Password)
}

func TestEmailInUse(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := createUser(t, db, "a@b.com", "A")
	b := createUser(t, db, "b@b.com", "B")

	inUse, err := db.EmailInUse(ctx, "a@b.com", a.ID)
	require.NoError(t, err)
	assert.False(t, inUse, "own email is not in use by someone else")

	inUse, err = db.EmailInUse(ctx, "a@b.com", b.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
}
