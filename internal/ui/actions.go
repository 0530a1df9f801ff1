package ui

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/model"
)

// ShiftStatus returns the board column delta steps from s, clamped to
// the first and last columns.
func ShiftStatus(s model.Status, delta int) model.Status {
	i := s.Index()
	if i >= len(model.BoardStatuses) {
		return model.StatusTodo
	}
	i = min(max(i+delta, 0), len(model.BoardStatuses)-1)
	return model.BoardStatuses[i]
}

// NextPriority cycles High, Medium, Low and back to High.
func NextPriority(p model.Priority) model.Priority {
	i := slices.Index(model.Priorities, p)
	return model.Priorities[(i+1)%len(model.Priorities)]
}

// ShiftDue moves a due date by days. A task without one is scheduled
// relative to today.
func ShiftDue(t model.Task, days int, today time.Time) time.Time {
	base := model.Day(today)
	if t.HasDueDate() {
		base = model.Day(*t.DueDate)
	}
	return base.AddDate(0, 0, days)
}

// HandleTaskKey applies the single-task shortcuts shared by the task
// pages. handled is false when msg is not one of them.
func HandleTaskKey(
	km *keys.KeyMap,
	c *board.Coordinator,
	t model.Task,
	msg tea.KeyMsg,
	today time.Time,
) (cmd tea.Cmd, kind board.MutationKind, handled bool, err error) {
	switch {
	case key.Matches(msg, km.Advance):
		next := ShiftStatus(t.Status, 1)
		if next == t.Status {
			return nil, board.KindStatus, true, nil
		}
		cmd, err = c.UpdateStatus(t.ID, next)
		return cmd, board.KindStatus, true, err

	case key.Matches(msg, km.Retreat):
		prev := ShiftStatus(t.Status, -1)
		if prev == t.Status {
			return nil, board.KindStatus, true, nil
		}
		cmd, err = c.UpdateStatus(t.ID, prev)
		return cmd, board.KindStatus, true, err

	case key.Matches(msg, km.Priority):
		cmd, err = c.UpdatePriority(t.ID, NextPriority(t.Priority))
		return cmd, board.KindPriority, true, err

	case key.Matches(msg, km.Subtask):
		cmd, err = c.IncrementSubtask(t.ID)
		return cmd, board.KindSubtask, true, err

	case key.Matches(msg, km.Sprint):
		var target *int64
		if t.InBacklog() {
			cur := c.Collection().CurrentSprint()
			if cur == nil {
				return nil, board.KindSprint, true, &model.ValidationError{
					Field:   "sprint",
					Message: "no sprint is active today",
				}
			}
			id := cur.ID
			target = &id
		}
		cmd, err = c.AssignSprint(t.ID, target)
		return cmd, board.KindSprint, true, err

	case key.Matches(msg, km.DueEarlier):
		cmd, err = c.UpdateDueDate(t.ID, ShiftDue(t, -1, today))
		return cmd, board.KindDueDate, true, err

	case key.Matches(msg, km.DueLater):
		cmd, err = c.UpdateDueDate(t.ID, ShiftDue(t, 1, today))
		return cmd, board.KindDueDate, true, err

	case key.Matches(msg, km.Archive):
		cmd, err = c.ArchiveTask(t.ID)
		return cmd, board.KindArchive, true, err

	case key.Matches(msg, km.Select):
		c.Toggle(t.ID)
		return nil, "", true, nil
	}
	return nil, "", false, nil
}

// ConfirmMsg asks the app to confirm a destructive action. OnYes runs
// only after the user agrees.
type ConfirmMsg struct {
	Kind        board.MutationKind
	Title       string
	Description string
	OnYes       func() (tea.Cmd, error)
}

// Confirm returns a command that raises a ConfirmMsg.
func Confirm(kind board.MutationKind, title, description string, onYes func() (tea.Cmd, error)) tea.Cmd {
	return func() tea.Msg {
		return ConfirmMsg{Kind: kind, Title: title, Description: description, OnYes: onYes}
	}
}

var errNothingSelected = &model.ValidationError{
	Field:   "selection",
	Message: "select tasks with space first",
}

func plural(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

// HandleBulkKey applies the delete, bulk and reset shortcuts. focused
// may be nil on pages without a cursor.
func HandleBulkKey(
	km *keys.KeyMap,
	c *board.Coordinator,
	focused *model.Task,
	msg tea.KeyMsg,
) (cmd tea.Cmd, kind board.MutationKind, handled bool, err error) {
	switch {
	case key.Matches(msg, km.Delete):
		if focused == nil {
			return nil, board.KindDelete, true, nil
		}
		id := focused.ID
		return Confirm(board.KindDelete,
			fmt.Sprintf("Delete %q?", focused.Title),
			"The task is removed permanently.",
			func() (tea.Cmd, error) { return c.DeleteTask(id) },
		), board.KindDelete, true, nil

	case key.Matches(msg, km.BulkArchive):
		ids := c.Selected()
		if len(ids) == 0 {
			return nil, board.KindBulkArchive, true, errNothingSelected
		}
		return Confirm(board.KindBulkArchive,
			fmt.Sprintf("Archive %s?", plural(len(ids))),
			"Archived tasks can be restored from the Archived tab.",
			func() (tea.Cmd, error) { return c.BulkArchive(ids) },
		), board.KindBulkArchive, true, nil

	case key.Matches(msg, km.BulkDelete):
		ids := c.Selected()
		if len(ids) == 0 {
			return nil, board.KindBulkDelete, true, errNothingSelected
		}
		return Confirm(board.KindBulkDelete,
			fmt.Sprintf("Delete %s?", plural(len(ids))),
			"Deleted tasks cannot be restored.",
			func() (tea.Cmd, error) { return c.BulkDelete(ids) },
		), board.KindBulkDelete, true, nil

	case key.Matches(msg, km.BulkMove):
		ids := c.Selected()
		if len(ids) == 0 {
			return nil, board.KindBulkMove, true, errNothingSelected
		}
		cur := c.Collection().CurrentSprint()
		if cur == nil {
			return nil, board.KindBulkMove, true, &model.ValidationError{
				Field:   "sprint",
				Message: "no sprint is active today",
			}
		}
		id := cur.ID
		cmd, err = c.BulkMoveToSprint(ids, &id)
		return cmd, board.KindBulkMove, true, err

	case key.Matches(msg, km.ResetProject):
		return ConfirmReset(c), board.KindReset, true, nil
	}
	return nil, "", false, nil
}

// ConfirmReset asks before deleting every sprint of c's project.
func ConfirmReset(c *board.Coordinator) tea.Cmd {
	return Confirm(board.KindReset,
		"Reset project?",
		"Every sprint is deleted. Their tasks move back to the backlog.",
		func() (tea.Cmd, error) { return c.ResetProject(), nil },
	)
}
