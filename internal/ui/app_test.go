package ui

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/config"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/ui/views"
)

func setupApp(t *testing.T) (*App, *app.App) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()
	a, err := app.New(ctx, &config.Config{
		DataDir:      dir,
		DatabasePath: filepath.Join(dir, "tick.db"),
		SessionPath:  filepath.Join(dir, "session.yaml"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		a.Close()
	})
	return NewApp(ctx, a), a
}

func TestStartsOnLoginWhenLoggedOut(t *testing.T) {
	m, _ := setupApp(t)
	m.Init()
	assert.Equal(t, ScreenLogin, m.Current())
	assert.Contains(t, m.View(), "Log in")
}

func TestStartsOnTasksWhenLoggedIn(t *testing.T) {
	m, a := setupApp(t)
	require.NoError(t, a.Session.CreateLoginSession(1, "ada@example.com", "Ada"))

	m.Init()
	assert.Equal(t, ScreenTasks, m.Current())
}

func TestNavigation(t *testing.T) {
	m, _ := setupApp(t)
	m.Init()

	m.Update(views.ShowRegister{})
	assert.Equal(t, ScreenRegister, m.Current())

	m.Update(views.ShowLogin{Notice: "Registration successful! Please log in."})
	assert.Equal(t, ScreenLogin, m.Current())
	assert.Contains(t, m.View(), "Registration successful")

	m.Update(views.LoggedIn{User: models.User{ID: 1, FullName: "Ada"}})
	assert.Equal(t, ScreenTasks, m.Current())

	m.Update(views.OpenTask{Task: models.Task{ID: 1, Title: "Buy milk", Priority: models.PriorityHigh}})
	assert.Equal(t, ScreenDetail, m.Current())
	assert.Contains(t, m.View(), "Buy milk")

	m.Update(views.BackToTasks{})
	assert.Equal(t, ScreenTasks, m.Current())

	m.Update(views.OpenProfile{})
	assert.Equal(t, ScreenProfile, m.Current())

	m.Update(views.LoggedOut{})
	assert.Equal(t, ScreenLogin, m.Current())
}
