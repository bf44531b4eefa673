package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/tick/internal/models"
)

const commentColumns = "id, task_id, user_id, COALESCE(user_full_name, ''), text, timestamp"

// InsertComment persists a comment and sets its ID. The task must exist.
func (db *DB) InsertComment(ctx context.Context, c *models.Comment) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO comments (task_id, user_id, user_full_name, text, timestamp) VALUES (?, ?, ?, ?, ?)
	`, c.TaskID, c.UserID, c.UserFullName, c.Text, c.Timestamp)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id

	db.changed(TableComments)
	return nil
}

// GetComment retrieves a comment by ID
func (db *DB) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := db.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = ?", id).
		Scan(&c.ID, &c.TaskID, &c.UserID, &c.UserFullName, &c.Text, &c.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListTaskComments retrieves all comments for a task, newest first
func (db *DB) ListTaskComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE task_id = ?
		ORDER BY timestamp DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.UserFullName, &c.Text, &c.Timestamp); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// UpdateComment overwrites the comment with the given ID
func (db *DB) UpdateComment(ctx context.Context, c models.Comment) error {
	result, err := db.ExecContext(ctx, `
		UPDATE comments SET task_id = ?, user_id = ?, user_full_name = ?, text = ?, timestamp = ?
		WHERE id = ?
	`, c.TaskID, c.UserID, c.UserFullName, c.Text, c.Timestamp, c.ID)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableComments)
	}
	return nil
}

// DeleteComment deletes a comment
func (db *DB) DeleteComment(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableComments)
	}
	return nil
}

// DeleteTaskComments deletes every comment on a task
func (db *DB) DeleteTaskComments(ctx context.Context, taskID int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM comments WHERE task_id = ?", taskID)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableComments)
	}
	return nil
}
