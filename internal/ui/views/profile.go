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

// ProfileView edits the logged-in user's name, email and password
type ProfileView struct {
	ctx    context.Context
	app    *app.App
	styles *styles.Styles
	keys   keys.KeyMap

	forms  [2]form // 0 = profile, 1 = password
	active int
	status status
	busy   bool

	width  int
	height int
}

type profileLoadedMsg struct {
	user *models.User
	err  error
}

type profileSavedMsg struct {
	err error
}

type passwordSavedMsg struct {
	err error
}

// NewProfileView creates the profile screen
func NewProfileView(ctx context.Context, a *app.App) *ProfileView {
	v := &ProfileView{
		ctx:    ctx,
		app:    a,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	v.forms[0] = newForm("Profile", "Update profile",
		newField("FullName", "Full name", "", false),
		newField("Email", "Email", "", false),
	)
	v.forms[1] = newForm("Change password", "Change password",
		newField("Current", "Current password", "", true),
		newField("New", "New password", "at least 6 characters", true),
	)
	v.forms[1].blur()

	// Cached session fields show immediately; the stored user replaces them
	v.forms[0].setValue(0, a.Session.FullName())
	v.forms[0].setValue(1, a.Session.Email())
	return v
}

func (v *ProfileView) Init() tea.Cmd {
	svc, ctx := v.app.Auth, v.ctx
	return tea.Batch(textinput.Blink, func() tea.Msg {
		user, err := svc.CurrentUser(ctx)
		return profileLoadedMsg{user: user, err: err}
	})
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case profileLoadedMsg:
		if msg.err != nil {
			slog.Error("failed to load profile", "error", msg.err)
			v.status = failed("Error loading profile")
			return v, nil
		}
		v.forms[0].setValue(0, msg.user.FullName)
		v.forms[0].setValue(1, msg.user.Email)
		return v, nil

	case profileSavedMsg:
		v.busy = false
		switch {
		case msg.err == nil:
			v.status = info("Profile updated successfully")
		case v.forms[0].showValidation(msg.err):
			v.status = status{}
		case errors.Is(msg.err, models.ErrEmailTaken):
			v.forms[0].setError("Email", "Email already in use by another account")
			v.status = status{}
		default:
			slog.Error("profile update failed", "error", msg.err)
			v.status = failed("Error updating profile")
		}
		return v, nil

	case passwordSavedMsg:
		v.busy = false
		switch {
		case msg.err == nil:
			v.forms[1].reset()
			v.forms[1].blur()
			v.active = 0
			v.forms[0].setFocus(0)
			v.status = info("Password changed successfully")
		case v.forms[1].showValidation(msg.err):
			v.status = status{}
		case errors.Is(msg.err, auth.ErrWrongPassword):
			v.forms[1].setError("Current", "Current password is incorrect")
			v.status = status{}
		default:
			slog.Error("password change failed", "error", msg.err)
			v.status = failed("Error changing password")
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
			return v, send(BackToTasks{})
		}

		res, cmd := v.forms[v.active].update(msg)
		switch res {
		case formSubmit:
			return v, v.submit()
		case formWrapped:
			// Moving past either end of one form enters the other
			wrappedTo := v.forms[v.active].focus
			v.forms[v.active].blur()
			v.active = 1 - v.active
			if wrappedTo == 0 {
				v.forms[v.active].setFocus(0)
			} else {
				v.forms[v.active].setFocus(len(v.forms[v.active].fields))
			}
			return v, textinput.Blink
		}
		return v, cmd
	}
	return v, nil
}

func (v *ProfileView) submit() tea.Cmd {
	v.busy = true
	v.status = status{}
	svc, ctx := v.app.Auth, v.ctx

	if v.active == 0 {
		req := auth.ProfileRequest{FullName: v.forms[0].value(0), Email: v.forms[0].value(1)}
		return func() tea.Msg {
			_, err := svc.UpdateProfile(ctx, req)
			return profileSavedMsg{err: err}
		}
	}

	req := auth.PasswordRequest{Current: v.forms[1].value(0), New: v.forms[1].value(1)}
	return func() tea.Msg {
		return passwordSavedMsg{err: svc.ChangePassword(ctx, req)}
	}
}

func (v *ProfileView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	body := lipgloss.JoinVertical(lipgloss.Left,
		v.forms[0].view(s, contentWidth),
		"",
		v.forms[1].view(s, contentWidth),
		"",
		v.status.render(s),
		helpLine(s, "tab", "next", "↵", "save", "esc", "back"),
	)

	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, body)
	return styles.CenterView(centered, v.width, v.height)
}
