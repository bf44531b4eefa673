package views

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/auth"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/ui/keys"
	"github.com/tgienger/tick/internal/ui/styles"
)

// LoginView asks for email and password
type LoginView struct {
	ctx    context.Context
	app    *app.App
	styles *styles.Styles
	keys   keys.KeyMap

	form   form
	status status
	busy   bool

	width  int
	height int
}

// NewLoginView creates the login screen. notice is shown once, e.g. after
// registering.
func NewLoginView(ctx context.Context, a *app.App, notice string) *LoginView {
	return &LoginView{
		ctx:    ctx,
		app:    a,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		form: newForm("Log in", "Log in",
			newField("Email", "Email", "you@example.com", false),
			newField("Password", "Password", "", true),
		),
		status: info(notice),
	}
}

type loginResultMsg struct {
	user *models.User
	err  error
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.busy = false
		if msg.err == nil {
			return v, send(LoggedIn{User: *msg.user})
		}
		switch {
		case v.form.showValidation(msg.err):
			v.status = status{}
		case errors.Is(msg.err, auth.ErrInvalidCredentials):
			v.status = failed("Invalid email or password")
		default:
			slog.Error("login failed", "error", msg.err)
			v.status = failed("Login failed")
		}
		return v, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		if v.busy {
			return v, nil
		}
		if key.Matches(msg, v.keys.Register) {
			return v, send(ShowRegister{})
		}

		res, cmd := v.form.update(msg)
		if res == formSubmit {
			return v, v.submit()
		}
		return v, cmd
	}
	return v, nil
}

func (v *LoginView) submit() tea.Cmd {
	v.busy = true
	v.status = info("Logging in...")
	req := auth.LoginRequest{Email: v.form.value(0), Password: v.form.value(1)}
	svc, ctx := v.app.Auth, v.ctx
	return func() tea.Msg {
		user, err := svc.Login(ctx, req)
		return loginResultMsg{user: user, err: err}
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("tick"),
		s.TitleMuted.Render("Shared to-do list"),
		"",
		v.form.view(s, contentWidth),
		"",
		v.status.render(s),
		helpLine(s, "tab", "next", "↵", "log in", "ctrl+r", "register", "ctrl+c", "quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, body)
	return styles.CenterView(centered, v.width, v.height)
}
