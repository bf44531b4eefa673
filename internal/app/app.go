// Package app wires the stores, the write worker and the account service
// into one handle that the CLI and the TUI share.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgienger/tick/internal/auth"
	"github.com/tgienger/tick/internal/config"
	"github.com/tgienger/tick/internal/db"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/repository"
	"github.com/tgienger/tick/internal/session"
	"github.com/tgienger/tick/internal/worker"
)

// App holds every long-lived component. There is one per process.
type App struct {
	Config  *config.Config
	Repo    *repository.Repository
	Session *session.Store
	Auth    *auth.Service

	db     *db.DB
	worker *worker.Worker
}

// New opens the database and the session file described by cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := session.Open(cfg.SessionPath)
	if err != nil {
		database.Close()
		return nil, err
	}

	w := worker.New()
	repo := repository.New(database, w, live.NewHub())

	slog.Info("app started", "database", cfg.DatabasePath, "logged_in", store.IsLoggedIn())

	return &App{
		Config:  cfg,
		Repo:    repo,
		Session: store,
		Auth:    auth.NewService(repo, store),
		db:      database,
		worker:  w,
	}, nil
}

// Close waits for queued writes and then closes the database
func (a *App) Close() error {
	a.worker.Close()
	return a.db.Close()
}
