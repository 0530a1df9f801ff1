package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
)

// CardOptions control how a task card is drawn.
type CardOptions struct {
	Width    int
	Today    time.Time
	Selected bool
	Pending  bool
	Grabbed  bool
}

// IsOverdue reports whether t is due before today and not done.
func IsOverdue(t model.Task, today time.Time) bool {
	return t.HasDueDate() && t.Status != model.StatusDone &&
		model.Day(*t.DueDate).Before(model.Day(today))
}

// DueLabel renders the due date, highlighting overdue tasks.
func DueLabel(t model.Task, today time.Time) string {
	if !t.HasDueDate() {
		return ""
	}
	if IsOverdue(t, today) {
		return theme.OverdueStyle.Render("! " + t.DueKey())
	}
	return theme.DueDateStyle.Render(t.DueKey())
}

// ProgressLabel renders subtask completion, or bare progress for
// tasks without a checklist.
func ProgressLabel(t model.Task) string {
	if t.Subtasks.Total > 0 {
		return fmt.Sprintf("%d/%d %d%%", t.Subtasks.Completed, t.Subtasks.Total, t.Progress)
	}
	if t.Progress > 0 {
		return fmt.Sprintf("%d%%", t.Progress)
	}
	return ""
}

// RenderCard draws a task as a two-line card.
func RenderCard(t model.Task, opts CardOptions) string {
	marker := " "
	switch {
	case opts.Grabbed:
		marker = "≡"
	case opts.Selected:
		marker = "●"
	case opts.Pending:
		marker = "…"
	}

	title := Truncate(t.Title, max(opts.Width-2, 1))
	first := marker + " " + title

	parts := []string{theme.PriorityStyle(t.Priority).Render(string(t.Priority))}
	if p := ProgressLabel(t); p != "" {
		parts = append(parts, p)
	}
	if d := DueLabel(t, opts.Today); d != "" {
		parts = append(parts, d)
	}
	if t.SprintName != "" {
		parts = append(parts, theme.DimmedStyle.Render(t.SprintName))
	}

	return first + "\n  " + strings.Join(parts, " ")
}
