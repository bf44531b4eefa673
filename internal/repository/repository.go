// Package repository is the single entry point the screens use for data.
// Writes go through one background worker; reads are live queries.
package repository

import (
	"context"
	"fmt"

	"github.com/tgienger/tick/internal/db"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/worker"
)

// Task list orderings
const (
	SortPriority     = "priority"
	SortAlphabetical = "alphabetical"
)

// Repository aggregates the task, comment and user stores
type Repository struct {
	db     *db.DB
	worker *worker.Worker
	hub    *live.Hub
}

// New wires the repository. The hub becomes the database's change notifier.
func New(database *db.DB, w *worker.Worker, hub *live.Hub) *Repository {
	database.SetNotifier(hub)
	return &Repository{
		db:     database,
		worker: w,
		hub:    hub,
	}
}

// Tasks

// InsertTask queues the insert. t.ID is set once the returned future is done.
func (r *Repository) InsertTask(t *models.Task) *worker.Future {
	return r.worker.Submit("insert task", func(ctx context.Context) error {
		return r.db.InsertTask(ctx, t)
	})
}

// UpdateTask queues an overwrite of the task
func (r *Repository) UpdateTask(t models.Task) *worker.Future {
	return r.worker.Submit("update task", func(ctx context.Context) error {
		return r.db.UpdateTask(ctx, t)
	})
}

// DeleteTask queues deletion of the task and, by cascade, its comments
func (r *Repository) DeleteTask(t models.Task) *worker.Future {
	return r.worker.Submit("delete task", func(ctx context.Context) error {
		return r.db.DeleteTask(ctx, t.ID)
	})
}

// DeleteCompletedTasks queues removal of every completed task
func (r *Repository) DeleteCompletedTasks() *worker.Future {
	return r.worker.Submit("delete completed tasks", func(ctx context.Context) error {
		_, err := r.db.DeleteCompletedTasks(ctx)
		return err
	})
}

// Task loads a single task
func (r *Repository) Task(ctx context.Context, id int64) (*models.Task, error) {
	return r.db.GetTask(ctx, id)
}

// AllTasks watches every task, highest priority first
func (r *Repository) AllTasks(ctx context.Context) *live.Query[[]models.Task] {
	return live.Watch[[]models.Task](ctx, r.hub, "tasks by priority", r.db.ListTasks, db.TableTasks)
}

// AllTasksAlphabetical watches every task ordered by title
func (r *Repository) AllTasksAlphabetical(ctx context.Context) *live.Query[[]models.Task] {
	return live.Watch[[]models.Task](ctx, r.hub, "tasks by title", r.db.ListTasksAlphabetical, db.TableTasks)
}

// Tasks watches every task in the given order
func (r *Repository) Tasks(ctx context.Context, sort string) *live.Query[[]models.Task] {
	if sort == SortAlphabetical {
		return r.AllTasksAlphabetical(ctx)
	}
	return r.AllTasks(ctx)
}

// Comments

// InsertComment queues the insert. c.ID is set once the returned future is done.
func (r *Repository) InsertComment(c *models.Comment) *worker.Future {
	return r.worker.Submit("insert comment", func(ctx context.Context) error {
		return r.db.InsertComment(ctx, c)
	})
}

// UpdateComment queues an overwrite of the comment
func (r *Repository) UpdateComment(c models.Comment) *worker.Future {
	return r.worker.Submit("update comment", func(ctx context.Context) error {
		return r.db.UpdateComment(ctx, c)
	})
}

// DeleteComment queues deletion of the comment
func (r *Repository) DeleteComment(c models.Comment) *worker.Future {
	return r.worker.Submit("delete comment", func(ctx context.Context) error {
		return r.db.DeleteComment(ctx, c.ID)
	})
}

// DeleteAllCommentsForTask queues deletion of every comment on a task
func (r *Repository) DeleteAllCommentsForTask(taskID int64) *worker.Future {
	return r.worker.Submit("delete task comments", func(ctx context.Context) error {
		return r.db.DeleteTaskComments(ctx, taskID)
	})
}

// CommentsForTask watches the comments on a task, newest first
func (r *Repository) CommentsForTask(ctx context.Context, taskID int64) *live.Query[[]models.Comment] {
	fetch := func(ctx context.Context) ([]models.Comment, error) {
		return r.db.ListTaskComments(ctx, taskID)
	}
	return live.Watch[[]models.Comment](ctx, r.hub, fmt.Sprintf("comments for task %d", taskID), fetch, db.TableComments)
}

// Users

// RegisterUser inserts the user on the worker and waits for the outcome.
// A taken email yields models.ErrEmailTaken and ID 0.
func (r *Repository) RegisterUser(ctx context.Context, u *models.User) (int64, error) {
	var id int64
	f := r.worker.Submit("register user", func(ctx context.Context) error {
		var err error
		id, err = r.db.InsertUser(ctx, u)
		return err
	})
	select {
	case <-f.Done():
		return id, f.Wait()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// UpdateUser queues an overwrite of the user
func (r *Repository) UpdateUser(u models.User) *worker.Future {
	return r.worker.Submit("update user", func(ctx context.Context) error {
		return r.db.UpdateUser(ctx, u)
	})
}

// UserByEmail looks a user up by email
func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.db.GetUserByEmail(ctx, email)
}

// UserByID looks a user up by ID
func (r *Repository) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.db.GetUserByID(ctx, id)
}

// UserCount returns the number of registered users
func (r *Repository) UserCount(ctx context.Context) (int, error) {
	return r.db.UserCount(ctx)
}

// EmailInUse reports whether an account other than exceptID uses email
func (r *Repository) EmailInUse(ctx context.Context, email string, exceptID int64) (bool, error) {
	return r.db.EmailInUse(ctx, email, exceptID)
}

// Preferences

// TaskSort returns the saved task list order, defaulting to priority
func (r *Repository) TaskSort(ctx context.Context) string {
	value, err := r.db.GetSetting(ctx, db.SettingTaskSort)
	if err != nil || value != SortAlphabetical {
		return SortPriority
	}
	return value
}

// SetTaskSort queues saving the task list order
func (r *Repository) SetTaskSort(sort string) *worker.Future {
	return r.worker.Submit("save task sort", func(ctx context.Context) error {
		return r.db.SetSetting(ctx, db.SettingTaskSort, sort)
	})
}
