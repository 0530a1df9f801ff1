package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Status is the board column a task occupies.
type Status string

// Board statuses, in column order. StatusArchived is only ever seen on
// the wire and in the archived shelf; it never appears on the board.
const (
	StatusTodo     Status = "todo"
	StatusProgress Status = "progress"
	StatusReview   Status = "review"
	StatusDone     Status = "done"
	StatusArchived Status = "archived"
)

// BoardStatuses lists the active columns in display order.
var BoardStatuses = []Status{
	StatusTodo,
	StatusProgress,
	StatusReview,
	StatusDone,
}

// Valid reports whether s is one of the four board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Label returns the human-readable column title.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusDone:
		return "Done"
	case StatusArchived:
		return "Archived"
	default:
		return string(s)
	}
}

// Index returns the column position of s, or len(BoardStatuses) for
// anything that is not a board column.
func (s Status) Index() int {
	for i, st := range BoardStatuses {
		if st == s {
			return i
		}
	}
	return len(BoardStatuses)
}

// ParseStatus converts user input into a board status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", s),
		}
	}
	return st, nil
}

// Priority is the task priority as the server spells it.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the accepted priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// unrankedPriority sorts unknown priority values after Low.
const unrankedPriority = 999

// Rank maps a priority to its sort ordinal: High=1, Medium=2, Low=3.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return unrankedPriority
	}
}

// Valid reports whether p is High, Medium or Low.
func (p Priority) Valid() bool {
	return p.Rank() != unrankedPriority
}

// ParsePriority converts user input (any case) into a Priority.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", &ValidationError{
		Field:   "priority",
		Message: fmt.Sprintf("priority must be High, Medium or Low, got %q", s),
	}
}

// Subtasks tracks checklist completion for a task.
type Subtasks struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Task is a single unit of work on the board.
type Task struct {
	// ID is the server-assigned identifier, kept opaque on the client.
	ID string `json:"id"`

	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	// DueDate is truncated to a calendar day; nil means no due date.
	DueDate *time.Time `json:"due_date,omitempty"`

	Subtasks Subtasks `json:"subtasks"`

	// Progress is derived from Subtasks when Total > 0 and tracked
	// independently otherwise.
	Progress int `json:"progress"`

	// SprintID is nil for backlog tasks.
	SprintID *int64 `json:"sprint_id,omitempty"`

	// SprintName caches the title of the referenced sprint.
	SprintName string `json:"sprint_name,omitempty"`

	Avatar string `json:"avatar,omitempty"`
}

// IsWIP reports whether the task is work in progress.
func (t Task) IsWIP() bool {
	return t.Status == StatusProgress
}

// InBacklog reports whether the task has no sprint.
func (t Task) InBacklog() bool {
	return t.SprintID == nil
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// DueKey returns the due date as YYYY-MM-DD, or "" when unset.
func (t Task) DueKey() string {
	if !t.HasDueDate() {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// Normalize enforces the subtask and progress invariants in place.
func (t *Task) Normalize() {
	if t.Subtasks.Total < 0 {
		t.Subtasks.Total = 0
	}
	if t.Subtasks.Completed < 0 {
		t.Subtasks.Completed = 0
	}
	if t.Subtasks.Completed > t.Subtasks.Total {
		t.Subtasks.Completed = t.Subtasks.Total
	}

	if t.Subtasks.Total > 0 {
		t.Progress = SubtaskProgress(t.Subtasks.Completed, t.Subtasks.Total)
		return
	}

	if t.Progress < 0 {
		t.Progress = 0
	}
	if t.Progress > 100 {
		t.Progress = 100
	}
}

// SubtasksComplete reports whether every subtask is done.
func (t Task) SubtasksComplete() bool {
	return t.Subtasks.Total > 0 && t.Subtasks.Completed >= t.Subtasks.Total
}

// SubtaskProgress returns round(completed/total*100), or 0 for an
// empty checklist.
func SubtaskProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// TaskDraft holds the fields collected by the create form.
type TaskDraft struct {
	UserID        int64
	Title         string
	Priority      Priority
	Status        Status
	DueDate       *time.Time
	SubtasksTotal int
	SprintID      *int64
}

// Validate checks the draft before it is sent anywhere. Empty priority
// and status fall back to Medium and todo.
func (d *TaskDraft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if d.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "a user is required"}
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.Valid() {
		return &ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("invalid priority %q", d.Priority),
		}
	}
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if !d.Status.Valid() {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("invalid status %q", d.Status),
		}
	}
	if d.SubtasksTotal < 0 {
		return &ValidationError{
			Field:   "subtasks_total",
			Message: "subtask count cannot be negative",
		}
	}
	return nil
}

// ArchivedTask is a task on the archived shelf together with the
// column it will return to when unarchived.
type ArchivedTask struct {
	Task
	PreviousStatus Status `json:"previous_status"`
}

// RestoreStatus returns the column to restore to, defaulting to todo.
func (a ArchivedTask) RestoreStatus() Status {
	if a.PreviousStatus.Valid() {
		return a.PreviousStatus
	}
	return StatusTodo
}
