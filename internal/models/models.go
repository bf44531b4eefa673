package models

import "time"

// Task priority levels
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// User represents a registered account
type User struct {
	ID       int64
	Email    string
	Password string
	FullName string
}

// Task represents a single to-do item
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	Priority    int // 1=low, 2=medium, 3=high
}

// NewTask returns an incomplete task. The priority is stored as given.
func NewTask(title, description string, priority int) Task {
	return Task{
		Title:       title,
		Description: description,
		Priority:    priority,
	}
}

// DisplayPriority maps the stored priority onto {1,2,3}, treating anything
// out of range as medium. The stored value is left untouched.
func (t Task) DisplayPriority() int {
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return t.Priority
	default:
		return PriorityMedium
	}
}

// PriorityText returns the human readable priority label
func (t Task) PriorityText() string {
	return PriorityName(t.DisplayPriority())
}

// Comment represents a comment on a task
type Comment struct {
	ID           int64
	TaskID       int64
	UserID       *int64 // nil once the author is gone, or for anonymous comments
	UserFullName string // copied from the author at creation
	Text         string
	Timestamp    int64 // epoch millis
}

// NewComment builds a comment stamped with the current time
func NewComment(taskID int64, userID *int64, userFullName, text string) Comment {
	return Comment{
		TaskID:       taskID,
		UserID:       userID,
		UserFullName: userFullName,
		Text:         text,
		Timestamp:    time.Now().UnixMilli(),
	}
}

// CreatedAt returns the comment timestamp as a time.Time
func (c Comment) CreatedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// FormattedTime renders the timestamp for display
func (c Comment) FormattedTime() string {
	return c.CreatedAt().Format("Jan 02, 2006 15:04")
}

// Author returns the display name of the comment author
func (c Comment) Author() string {
	if c.UserFullName == "" {
		return "Anonymous"
	}
	return c.UserFullName
}
