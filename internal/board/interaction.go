package board

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/brainmint/internal/model"
)

// DragEvent is a completed drag from one column to another.
type DragEvent struct {
	TaskID string
	From   model.Status
	To     model.Status
}

// Adapter turns board gestures into coordinator calls. It holds no
// business rules beyond the same-column short circuit.
type Adapter struct {
	c    *Coordinator
	drag *DragEvent
}

// NewAdapter binds an adapter to a coordinator.
func NewAdapter(c *Coordinator) *Adapter {
	return &Adapter{c: c}
}

// Drop applies a finished drag. Dropping onto the source column does
// nothing.
func (a *Adapter) Drop(ev DragEvent) (tea.Cmd, error) {
	if ev.From == ev.To {
		return nil, nil
	}
	return a.c.MoveTask(ev.TaskID, ev.To)
}

// DropOnDay reschedules a task dragged onto a calendar day.
func (a *Adapter) DropOnDay(taskID string, day time.Time) (tea.Cmd, error) {
	return a.c.UpdateDueDate(taskID, day)
}

// Click toggles a task in the selection.
func (a *Adapter) Click(taskID string) {
	a.c.Toggle(taskID)
}

// Grab starts a keyboard drag of a task from its column.
func (a *Adapter) Grab(taskID string, from model.Status) {
	a.drag = &DragEvent{TaskID: taskID, From: from, To: from}
}

// Dragging returns the task being dragged, if any.
func (a *Adapter) Dragging() (DragEvent, bool) {
	if a.drag == nil {
		return DragEvent{}, false
	}
	return *a.drag, true
}

// Hover moves the pending drag over another column.
func (a *Adapter) Hover(to model.Status) {
	if a.drag != nil {
		a.drag.To = to
	}
}

// Release drops the pending drag onto its hovered column.
func (a *Adapter) Release() (tea.Cmd, error) {
	if a.drag == nil {
		return nil, nil
	}
	ev := *a.drag
	a.drag = nil
	return a.Drop(ev)
}

// CancelDrag abandons the pending drag.
func (a *Adapter) CancelDrag() { a.drag = nil }
