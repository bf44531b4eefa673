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

// RegisterView creates an account. It does not log the new user in.
type RegisterView struct {
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

// NewRegisterView creates the registration screen
func NewRegisterView(ctx context.Context, a *app.App) *RegisterView {
	return &RegisterView{
		ctx:    ctx,
		app:    a,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		form: newForm("Create account", "Register",
			newField("FullName", "Full name", "Ada Lovelace", false),
			newField("Email", "Email", "you@example.com", false),
			newField("Password", "Password", "at least 6 characters", true),
		),
	}
}

type registerResultMsg struct {
	err error
}

func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case registerResultMsg:
		v.busy = false
		if msg.err == nil {
			return v, send(ShowLogin{Notice: "Registration successful! Please log in."})
		}
		switch {
		case v.form.showValidation(msg.err):
			v.status = status{}
		case errors.Is(msg.err, models.ErrEmailTaken):
			v.form.setError("Email", "Email already registered")
			v.status = status{}
		default:
			slog.Error("registration failed", "error", msg.err)
			v.status = failed("Registration failed")
		}
		return v, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		if v.busy {
			return v, nil
		}
		if key.Matches(msg, v.keys.Back) {
			return v, send(ShowLogin{})
		}

		res, cmd := v.form.update(msg)
		if res == formSubmit {
			return v, v.submit()
		}
		return v, cmd
	}
	return v, nil
}

func (v *RegisterView) submit() tea.Cmd {
	v.busy = true
	v.status = info("Processing registration...")
	req := auth.RegisterRequest{
		FullName: v.form.value(0),
		Email:    v.form.value(1),
		Password: v.form.value(2),
	}
	svc, ctx := v.app.Auth, v.ctx
	return func() tea.Msg {
		_, err := svc.Register(ctx, req)
		return registerResultMsg{err: err}
	}
}

func (v *RegisterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	body := lipgloss.JoinVertical(lipgloss.Left,
		v.form.view(s, contentWidth),
		"",
		v.status.render(s),
		helpLine(s, "tab", "next", "↵", "register", "esc", "back to login"),
	)

	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, body)
	return styles.CenterView(centered, v.width, v.height)
}
