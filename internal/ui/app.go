package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/ui/views"
)

// Screen is the currently active view
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenTasks
	ScreenDetail
	ScreenProfile
)

// App is the top-level model. It owns one view per screen and routes key
// presses to the active one; everything else reaches every open view so live
// query results keep flowing while a screen is hidden.
type App struct {
	ctx    context.Context
	app    *app.App
	screen Screen

	login    *views.LoginView
	register *views.RegisterView
	taskList *views.TaskListView
	detail   *views.TaskDetailView
	profile  *views.ProfileView

	width  int
	height int
}

// NewApp creates the application
func NewApp(ctx context.Context, a *app.App) *App {
	return &App{ctx: ctx, app: a}
}

func (a *App) Init() tea.Cmd {
	if a.app.Session.IsLoggedIn() {
		return a.showTasks()
	}
	return a.showLogin("")
}

// Current returns the active screen
func (a *App) Current() Screen {
	return a.screen
}

func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) showLogin(notice string) tea.Cmd {
	a.closeSession()
	a.screen = ScreenLogin
	a.login = views.NewLoginView(a.ctx, a.app, notice)
	return tea.Batch(a.login.Init(), a.resize())
}

func (a *App) showRegister() tea.Cmd {
	a.screen = ScreenRegister
	a.register = views.NewRegisterView(a.ctx, a.app)
	return tea.Batch(a.register.Init(), a.resize())
}

// showTasks returns to the task list, starting it if needed
func (a *App) showTasks() tea.Cmd {
	a.closeDetail()
	a.profile = nil
	a.login = nil
	a.register = nil
	a.screen = ScreenTasks

	if a.taskList != nil {
		return a.resize()
	}
	a.taskList = views.NewTaskListView(a.ctx, a.app)
	return tea.Batch(a.taskList.Init(), a.resize())
}

func (a *App) closeDetail() {
	if a.detail != nil {
		a.detail.Close()
		a.detail = nil
	}
}

// closeSession drops every view that belongs to a logged-in user
func (a *App) closeSession() {
	a.closeDetail()
	if a.taskList != nil {
		a.taskList.Close()
		a.taskList = nil
	}
	a.profile = nil
	a.register = nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.LoggedIn:
		return a, a.showTasks()

	case views.LoggedOut:
		return a, a.showLogin("")

	case views.ShowLogin:
		return a, a.showLogin(msg.Notice)

	case views.ShowRegister:
		return a, a.showRegister()

	case views.BackToTasks:
		return a, a.showTasks()

	case views.OpenTask:
		a.closeDetail()
		a.screen = ScreenDetail
		a.detail = views.NewTaskDetailView(a.ctx, a.app, msg.Task)
		return a, tea.Batch(a.detail.Init(), a.resize())

	case views.OpenProfile:
		a.screen = ScreenProfile
		a.profile = views.NewProfileView(a.ctx, a.app)
		return a, tea.Batch(a.profile.Init(), a.resize())

	case tea.KeyMsg:
		if m := a.active(); m != nil {
			_, cmd := m.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	var cmds []tea.Cmd
	for _, m := range a.open() {
		_, cmd := m.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) active() tea.Model {
	switch a.screen {
	case ScreenLogin:
		return modelOrNil(a.login)
	case ScreenRegister:
		return modelOrNil(a.register)
	case ScreenTasks:
		return modelOrNil(a.taskList)
	case ScreenDetail:
		return modelOrNil(a.detail)
	case ScreenProfile:
		return modelOrNil(a.profile)
	}
	return nil
}

func (a *App) open() []tea.Model {
	var out []tea.Model
	for _, m := range []tea.Model{
		modelOrNil(a.login),
		modelOrNil(a.register),
		modelOrNil(a.taskList),
		modelOrNil(a.detail),
		modelOrNil(a.profile),
	} {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// modelOrNil avoids storing a typed nil pointer in a tea.Model
func modelOrNil[T interface {
	comparable
	tea.Model
}](m T) tea.Model {
	var zero T
	if m == zero {
		return nil
	}
	return m
}

func (a *App) View() string {
	if m := a.active(); m != nil {
		return m.View()
	}
	return ""
}
