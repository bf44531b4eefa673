package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tick/internal/app"
	"github.com/tgienger/tick/internal/live"
	"github.com/tgienger/tick/internal/models"
	"github.com/tgienger/tick/internal/repository"
	"github.com/tgienger/tick/internal/ui/keys"
	"github.com/tgienger/tick/internal/ui/styles"
)

type tasksMsg = queryMsg[[]models.Task]

// Edit form focus positions
const (
	editFocusTitle = iota
	editFocusDesc
	editFocusPriority
	editFocusSave
	editFocusCount
)

// TaskListView shows every task, live
type TaskListView struct {
	ctx    context.Context
	app    *app.App
	styles *styles.Styles
	keys   keys.KeyMap

	tasks   []models.Task
	loaded  bool
	sort    string
	query   *live.Query[[]models.Task]
	queryID int64
	cancel  context.CancelFunc

	width   int
	height  int
	cursor  int
	scrollY int

	// Task creation/editing
	editing      bool
	editingID    int64 // 0 for a new task
	editTitle    textinput.Model
	editDesc     textarea.Model
	editPriority int
	editFocusIdx int

	// Confirmations
	confirmingDelete bool
	deleteTarget     models.Task
	confirmingClear  bool

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool

	status status
}

// NewTaskListView creates the task list and restores the saved sort order
func NewTaskListView(ctx context.Context, a *app.App) *TaskListView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	return &TaskListView{
		ctx:       ctx,
		app:       a,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		sort:      a.Repo.TaskSort(ctx),
		editTitle: editTitle,
		editDesc:  editDesc,
	}
}

// Init starts the live query
func (v *TaskListView) Init() tea.Cmd {
	return v.watch()
}

// Close stops the live query
func (v *TaskListView) Close() {
	if v.cancel != nil {
		v.cancel()
	}
}

// watch (re)starts the live query in the current sort order
func (v *TaskListView) watch() tea.Cmd {
	v.Close()
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel
	v.queryID = queryIDs.Add(1)
	v.query = v.app.Repo.Tasks(ctx, v.sort)
	return listen(v.queryID, v.query)
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksMsg:
		if msg.id != v.queryID || !msg.ok {
			return v, nil
		}
		v.tasks = msg.value
		v.loaded = true
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		v.ensureVisible()
		return v, listen(v.queryID, v.query)

	case writeFailedMsg:
		v.status = failed(fmt.Sprintf("Error %s", msg.what))
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete || v.confirmingClear {
			return v.updateConfirm(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = status{}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			return v, send(OpenTask{Task: task})
		}

	case key.Matches(msg, v.keys.New):
		v.startEdit(nil)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task, ok := v.selected(); ok {
			v.startEdit(&task)
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selected(); ok {
			task.Completed = !task.Completed
			return v, await(v.app.Repo.UpdateTask(task), "updating task")
		}

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = task
		}

	case key.Matches(msg, v.keys.ClearCompleted):
		v.confirmingClear = true

	case key.Matches(msg, v.keys.Sort):
		if v.sort == repository.SortAlphabetical {
			v.sort = repository.SortPriority
		} else {
			v.sort = repository.SortAlphabetical
		}
		v.cursor, v.scrollY = 0, 0
		return v, tea.Batch(
			v.watch(),
			await(v.app.Repo.SetTaskSort(v.sort), "saving sort order"),
		)

	case key.Matches(msg, v.keys.Profile):
		return v, send(OpenProfile{})

	case key.Matches(msg, v.keys.Logout):
		if err := v.app.Auth.Logout(); err != nil {
			slog.Error("logout failed", "error", err)
			v.status = failed("Logout failed")
			return v, nil
		}
		return v, send(LoggedOut{})

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}

	return v, nil
}

func (v *TaskListView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		var cmd tea.Cmd
		if v.confirmingDelete {
			cmd = await(v.app.Repo.DeleteTask(v.deleteTarget), "deleting task")
			v.status = info("Task deleted")
		} else {
			cmd = await(v.app.Repo.DeleteCompletedTasks(), "clearing completed tasks")
			v.status = info("Completed tasks cleared")
		}
		v.confirmingDelete = false
		v.confirmingClear = false
		return v, cmd
	case "n", "N", "esc":
		v.confirmingDelete = false
		v.confirmingClear = false
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % editFocusCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.editFocusIdx = (v.editFocusIdx + editFocusCount - 1) % editFocusCount
		v.updateEditFocus()
		return v, nil
	}

	switch v.editFocusIdx {
	case editFocusTitle:
		if key.Matches(msg, v.keys.Enter) {
			v.editFocusIdx = editFocusDesc
			v.updateEditFocus()
			return v, nil
		}
		var cmd tea.Cmd
		v.editTitle, cmd = v.editTitle.Update(msg)
		return v, cmd

	case editFocusDesc:
		var cmd tea.Cmd
		v.editDesc, cmd = v.editDesc.Update(msg)
		return v, cmd

	case editFocusPriority:
		switch msg.String() {
		case "left", "h", "down", "j":
			v.editPriority = max(models.PriorityLow, v.editPriority-1)
		case "right", "l", "up", "k":
			v.editPriority = min(models.PriorityHigh, v.editPriority+1)
		case "1", "2", "3":
			v.editPriority = int(msg.String()[0] - '0')
		case "enter":
			v.editFocusIdx = editFocusSave
			v.updateEditFocus()
		}
		return v, nil

	case editFocusSave:
		if key.Matches(msg, v.keys.Enter) {
			return v, v.saveTask()
		}
	}
	return v, nil
}

func (v *TaskListView) startEdit(task *models.Task) {
	v.editing = true
	v.editFocusIdx = editFocusTitle
	if task == nil {
		v.editingID = 0
		v.editTitle.Reset()
		v.editDesc.Reset()
		v.editPriority = models.PriorityMedium
	} else {
		v.editingID = task.ID
		v.editTitle.SetValue(task.Title)
		v.editDesc.SetValue(task.Description)
		v.editPriority = task.DisplayPriority()
	}
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()

	switch v.editFocusIdx {
	case editFocusTitle:
		v.editTitle.Focus()
	case editFocusDesc:
		v.editDesc.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.status = failed("Task title cannot be empty")
		return nil
	}
	desc := strings.TrimSpace(v.editDesc.Value())
	v.editing = false

	if v.editingID == 0 {
		task := models.NewTask(title, desc, v.editPriority)
		v.status = info("Task added")
		return await(v.app.Repo.InsertTask(&task), "adding task")
	}

	for _, t := range v.tasks {
		if t.ID == v.editingID {
			t.Title = title
			t.Description = desc
			t.Priority = v.editPriority
			v.status = info("Task updated")
			return await(v.app.Repo.UpdateTask(t), "updating task")
		}
	}
	v.status = failed("Task no longer exists")
	return nil
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return models.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 1 line
	return max(v.height-10, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete || v.confirmingClear {
		return v.renderConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	if st := v.status.render(v.styles); st != "" {
		b.WriteString("\n" + st)
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	open := 0
	for _, t := range v.tasks {
		if !t.Completed {
			open++
		}
	}

	sortLabel := "by priority"
	if v.sort == repository.SortAlphabetical {
		sortLabel = "A-Z"
	}

	title := s.Title.Render("Tasks")
	meta := s.TitleMuted.Render(fmt.Sprintf("  %d open / %d total • %s", open, len(v.tasks), sortLabel))
	user := s.TitleMuted.Render(v.app.Session.FullName())

	left := lipgloss.JoinHorizontal(lipgloss.Bottom, title, meta)
	gap := max(styles.ContentWidth(v.width)-lipgloss.Width(left)-lipgloss.Width(user)-2, 1)
	return left + strings.Repeat(" ", gap) + user
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}
	if len(v.tasks) == 0 {
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.tasks))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.tasks[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	check := "[ ]"
	title := s.TaskTitle.Render(task.Title)
	if task.Completed {
		check = "[x]"
		title = s.TaskCompleted.Render(task.Title)
	}
	priority := s.Priority(task.DisplayPriority()).Render(fmt.Sprintf("%-6s", task.PriorityText()))

	line := check + " " + priority + " " + title
	if selected {
		return s.ListSelected.Width(width).Render(line)
	}
	return s.ListItem.Width(width).Render(line)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if v.editingID != 0 {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	priorityStyle := s.Input
	btnStyle := s.Button
	switch v.editFocusIdx {
	case editFocusTitle:
		titleStyle = s.InputFocused
	case editFocusDesc:
		descStyle = s.InputFocused
	case editFocusPriority:
		priorityStyle = s.InputFocused
	case editFocusSave:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	var levels []string
	for p := models.PriorityLow; p <= models.PriorityHigh; p++ {
		label := models.PriorityName(p)
		if p == v.editPriority {
			levels = append(levels, s.Priority(p).Underline(true).Render("● "+label))
		} else {
			levels = append(levels, s.TitleMuted.Render("○ "+label))
		}
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		"Priority:",
		priorityStyle.Render(strings.Join(levels, "  ")),
		"",
		btnStyle.Render(" Save "),
		"",
		v.status.render(s),
		s.TitleMuted.Render("Tab: next • ←→: priority • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, form)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	if styles.ContentWidth(v.width) < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return helpLine(s,
		"↵", "open", "n", "new", "e", "edit", "space", "done",
		"d", "delete", "s", "sort", "p", "profile", "q", "quit", "?", "more",
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	rows := []string{s.Title.Render("Keys"), ""}
	for _, b := range []key.Binding{
		v.keys.Up, v.keys.Down, v.keys.Enter, v.keys.New, v.keys.Edit, v.keys.Toggle,
		v.keys.Delete, v.keys.ClearCompleted, v.keys.Sort, v.keys.Profile, v.keys.Logout, v.keys.Quit,
	} {
		h := b.Help()
		rows = append(rows, fmt.Sprintf("%s  %s", s.HelpKey.Width(8).Render(h.Key), s.HelpDesc.Render(h.Desc)))
	}
	rows = append(rows, "", s.TitleMuted.Render("Press any key to close"))

	popup := s.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, popup)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	heading, detail := "Delete Task?", v.deleteTarget.Title
	if v.confirmingClear {
		heading, detail = "Clear Completed?", "Every completed task and its comments will be removed."
	}

	dialog := s.Dialog.Render(lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(heading),
		"",
		detail,
		"",
		s.TitleMuted.Render("y: yes • n: no"),
	))

	centered := lipgloss.Place(contentWidth, v.height, lipgloss.Center, lipgloss.Center, dialog)
	return styles.CenterView(centered, v.width, v.height)
}
