package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/tick/internal/models"
)

const taskColumns = "id, title, description, completed, priority"

// InsertTask persists a new task and sets its ID
func (db *DB) InsertTask(ctx context.Context, t *models.Task) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO tasks (title, description, completed, priority) VALUES (?, ?, ?, ?)
	`, t.Title, t.Description, t.Completed, t.Priority)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id

	db.changed(TableTasks)
	return nil
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t := &models.Task{}
	err := db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns all tasks, highest priority first. Ties keep insertion order.
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	return db.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY priority DESC, id ASC")
}

// ListTasksAlphabetical returns all tasks ordered by title
func (db *DB) ListTasksAlphabetical(ctx context.Context) ([]models.Task, error) {
	return db.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY title ASC, id ASC")
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.Priority); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask overwrites every field of the task with the given ID.
// Updating a missing task is a no-op.
func (db *DB) UpdateTask(ctx context.Context, t models.Task) error {
	result, err := db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, completed = ?, priority = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Completed, t.Priority, t.ID)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableTasks)
	}
	return nil
}

// DeleteTask deletes a task; its comments go with it
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	if touched(result) {
		db.changed(TableTasks, TableComments)
	}
	return nil
}

// DeleteCompletedTasks removes every completed task and returns how many went
func (db *DB) DeleteCompletedTasks(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE completed = 1")
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		db.changed(TableTasks, TableComments)
	}
	return n, nil
}

// TaskCount returns the number of tasks
func (db *DB) TaskCount(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}

// touched reports whether a write affected at least one row
func touched(result sql.Result) bool {
	n, err := result.RowsAffected()
	return err != nil || n > 0
}
