package views

import (
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/ui/styles"
	"github.com/tgienger/tick/internal/worker"
)

// Navigation messages handled by the top-level model

// LoggedIn is sent after a successful login
type LoggedIn struct {
	User models.User
}

// LoggedOut is sent after the session was cleared
type LoggedOut struct{}

// ShowLogin switches to the login screen, optionally with a notice
type ShowLogin struct {
	Notice string
}

// ShowRegister switches to the registration screen
type ShowRegister struct{}

// OpenTask opens the detail screen for a task
type OpenTask struct {
	Task models.Task
}

// BackToTasks returns to the task list
type BackToTasks struct{}

// OpenProfile opens the profile screen
type OpenProfile struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

var queryIDs atomic.Int64

// queryMsg carries one live query result. id tells a view's current query
// apart from one it has already cancelled.
type queryMsg[T any] struct {
	id    int64
	value T
	ok    bool
}

// listen waits for the next result of q
func listen[T any](id int64, q *live.Query[T]) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-q.Updates()
		return queryMsg[T]{id: id, value: v, ok: ok}
	}
}

// writeFailedMsg reports a queued write that did not apply
type writeFailedMsg struct {
	what string
	err  error
}

// await turns the outcome of a queued write into a message. Success is silent.
func await(f *worker.Future, what string) tea.Cmd {
	return func() tea.Msg {
		if err := f.Wait(); err != nil {
			slog.Error("write failed", "what", what, "error", err)
			return writeFailedMsg{what: what, err: err}
		}
		return nil
	}
}

// status is the one-line message under a view
type status struct {
	text  string
	isErr bool
}

func info(text string) status  { return status{text: text} }
func failed(text string) status { return status{text: text, isErr: true} }

func (st status) render(s *styles.Styles) string {
	if st.text == "" {
		return ""
	}
	if st.isErr {
		return s.StatusError.Render(st.text)
	}
	return s.StatusSuccess.Render(st.text)
}

// helpLine renders "key desc • key desc" pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, s.HelpDesc.Render(" • ")))
}
