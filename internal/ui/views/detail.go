package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/ui/keys"
	"github.com/tgienger/tick/internal/ui/styles"
)

type commentsMsg = queryMsg[[]models.Comment]

// TaskDetailView shows one task with its comments, newest first
type TaskDetailView struct {
	app    *app.App
	styles *styles.Styles
	keys   keys.KeyMap

	task     models.Task
	comments []models.Comment
	query    *live.Query[[]models.Comment]
	queryID  int64
	cancel   context.CancelFunc

	commentInput        textarea.Model
	commentInputFocused bool

	width   int
	height  int
	scrollY int

	status status
}

// NewTaskDetailView creates the detail screen for task
func NewTaskDetailView(ctx context.Context, a *app.App, task models.Task) *TaskDetailView {
	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	ctx, cancel := context.WithCancel(ctx)
	return &TaskDetailView{
		app:          a,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		task:         task,
		query:        a.Repo.CommentsForTask(ctx, task.ID),
		queryID:      queryIDs.Add(1),
		cancel:       cancel,
		commentInput: commentInput,
	}
}

// Init waits for the first batch of comments
func (v *TaskDetailView) Init() tea.Cmd {
	return listen(v.queryID, v.query)
}

// Close stops the comment query
func (v *TaskDetailView) Close() {
	v.cancel()
}

func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.commentInput.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case commentsMsg:
		if msg.id != v.queryID || !msg.ok {
			return v, nil
		}
		v.comments = msg.value
		v.scrollY = clamp(v.scrollY, 0, max(len(v.comments)-1, 0))
		return v, listen(v.queryID, v.query)

	case writeFailedMsg:
		v.status = failed(fmt.Sprintf("Error %s", msg.what))
		return v, nil

	case tea.KeyMsg:
		if v.commentInputFocused {
			return v.updateComment(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *TaskDetailView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = status{}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, send(BackToTasks{})

	case key.Matches(msg, v.keys.Toggle):
		v.task.Completed = !v.task.Completed
		if v.task.Completed {
			v.status = info("Task marked as complete")
		} else {
			v.status = info("Task marked as incomplete")
		}
		return v, await(v.app.Repo.UpdateTask(v.task), "updating task")

	case key.Matches(msg, v.keys.Comment), key.Matches(msg, v.keys.Enter):
		v.commentInputFocused = true
		return v, v.commentInput.Focus()

	case key.Matches(msg, v.keys.Up):
		if v.scrollY > 0 {
			v.scrollY--
		}

	case key.Matches(msg, v.keys.Down):
		if v.scrollY < len(v.comments)-1 {
			v.scrollY++
		}
	}
	return v, nil
}

func (v *TaskDetailView) updateComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.commentInput.Blur()
		v.commentInputFocused = false
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		return v, v.submitComment()
	}

	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return v, cmd
}

func (v *TaskDetailView) submitComment() tea.Cmd {
	text := strings.TrimSpace(v.commentInput.Value())
	if text == "" {
		v.status = failed("Comment cannot be empty")
		return nil
	}

	userID := v.app.Session.UserID()
	c := models.NewComment(v.task.ID, &userID, v.app.Session.FullName(), text)

	v.commentInput.Reset()
	v.commentInput.Blur()
	v.commentInputFocused = false
	v.scrollY = 0
	v.status = info("Comment added")
	return await(v.app.Repo.InsertComment(&c), "adding comment")
}

func (v *TaskDetailView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	textWidth := max(contentWidth-6, 20)

	state := "Open"
	toggle := "space: mark as complete"
	if v.task.Completed {
		state = "Completed"
		toggle = "space: mark as incomplete"
	}

	desc := v.task.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	rows := []string{
		s.Title.Render(v.task.Title),
		s.Priority(v.task.DisplayPriority()).Render(v.task.PriorityText()+" priority") +
			s.TitleMuted.Render("  •  "+state),
		"",
		lipgloss.NewStyle().Width(textWidth).Render(desc),
		"",
		s.Title.Render(fmt.Sprintf("Comments (%d)", len(v.comments))),
	}

	inputStyle := s.Input
	if v.commentInputFocused {
		inputStyle = s.InputFocused
	}
	rows = append(rows, inputStyle.Render(v.commentInput.View()), "")
	rows = append(rows, v.renderComments(textWidth)...)

	if st := v.status.render(s); st != "" {
		rows = append(rows, "", st)
	}

	help := helpLine(s, "c", "comment", "space", strings.TrimPrefix(toggle, "space: "), "↑↓", "scroll", "esc", "back")
	if v.commentInputFocused {
		help = helpLine(s, "↵", "post", "esc", "cancel")
	}
	rows = append(rows, help)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskDetailView) renderComments(width int) []string {
	s := v.styles
	if len(v.comments) == 0 {
		return []string{s.TitleMuted.Render("No comments yet")}
	}

	// Each comment takes roughly 3 lines
	visible := max((v.height-18)/3, 1)
	end := min(v.scrollY+visible, len(v.comments))

	var rows []string
	for _, c := range v.comments[v.scrollY:end] {
		rows = append(rows,
			s.CommentAuthor.Render(c.Author())+"  "+s.CommentTime.Render(c.FormattedTime()),
			s.CommentText.Width(width).Render(c.Text),
		)
	}
	if end < len(v.comments) {
		rows = append(rows, s.TitleMuted.Render(fmt.Sprintf("… %d more", len(v.comments)-end)))
	}
	return rows
}
