package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/models"
)

func TestCommentsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, db, "t", models.PriorityMedium)

	for i, text := range []string{"first", "second", "third"} {
		c := models.NewComment(task.ID, nil, "", text)
		c.Timestamp = int64(1000 + i)
		require.NoError(t, db.InsertComment(ctx, &c))
	}

	comments, err := db.ListTaskComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "third", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
	assert.Equal(t, "first", comments[2].Text)
}

func TestCommentAuthorIsDenormalized(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, db, "t", models.PriorityMedium)
	user := createUser(t, db, "a@b.com", "Ada Lovelace")

	c := models.NewComment(task.ID, &user.ID, user.FullName, "looks good")
	require.NoError(t, db.InsertComment(ctx, &c))

	user.FullName = "Ada King"
	require.NoError(t, db.UpdateUser(ctx, user))

	got, err := db.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.UserFullName)
	require.NotNil(t, got.UserID)
	assert.Equal(t, user.ID, *got.UserID)
}

func TestCommentAuthorNulledWhenUserDeleted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, db, "t", models.PriorityMedium)
	user := createUser(t, db, "a@b.com", "Ada")

	c := models.NewComment(task.ID, &user.ID, user.FullName, "hi")
	require.NoError(t, db.InsertComment(ctx, &c))

	_, err := db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", user.ID)
	require.NoError(t, err)

	got, err := db.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
	assert.Equal(t, "Ada", got.UserFullName)
}

func TestCommentRequiresExistingTask(t *testing.T) {
	db := setupTestDB(t)

	c := models.NewComment(12345, nil, "", "orphan")
	assert.Error(t, db.InsertComment(context.Background(), &c))
}

func TestUpdateAndDeleteComment(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, db, "t", models.PriorityMedium)

	c := models.NewComment(task.ID, nil, "", "typo")
	require.NoError(t, db.InsertComment(ctx, &c))

	c.Text = "fixed"
	require.NoError(t, db.UpdateComment(ctx, c))
	got, err := db.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Text)

	require.NoError(t, db.DeleteComment(ctx, c.ID))
	_, err = db.GetComment(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteTaskComments(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, db, "t", models.PriorityMedium)

	for _, text := range []string{"a", "b"} {
		c := models.NewComment(task.ID, nil, "", text)
		require.NoError(t, db.InsertComment(ctx, &c))
	}

	require.NoError(t, db.DeleteTaskComments(ctx, task.ID))
	comments, err := db.ListTaskComments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// the task itself survives
	_, err = db.GetTask(ctx, task.ID)
	assert.NoError(t, err)
}

func TestScenarioCommentGoneWithTask(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// ids 1..5 so the task under test is #5
	var task models.Task
	for i := 0; i < 5; i++ {
		task = createTask(t, db, "t", models.PriorityMedium)
	}
	require.Equal(t, int64(5), task.ID)
	createUser(t, db, "x@y.com", "X")
	user := createUser(t, db, "u@y.com", "U")
	require.Equal(t, int64(2), user.ID)

	c := models.NewComment(5, &user.ID, user.FullName, "ok")
	require.NoError(t, db.InsertComment(ctx, &c))
	require.NoError(t, db.DeleteTask(ctx, 5))

	comments, err := db.ListTaskComments(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
