package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
)

func TestDropOnSameColumnIsNoop(t *testing.T) {
	f := newFakeStore(task("1", model.StatusTodo, 0, 0))
	a := NewAdapter(loadedCoordinator(t, f))

	cmd, err := a.Drop(DragEvent{TaskID: "1", From: model.StatusTodo, To: model.StatusTodo})
	assert.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Zero(t, f.callCount("UpdateStatus"))
}

func TestDropMovesTask(t *testing.T) {
	f := newFakeStore(task("1", model.StatusTodo, 0, 0))
	c := loadedCoordinator(t, f)
	a := NewAdapter(c)

	cmd, err := a.Drop(DragEvent{TaskID: "1", From: model.StatusTodo, To: model.StatusReview})
	require.NoError(t, err)
	drain(t, c, cmd)

	got, _ := c.Collection().FindByID("1")
	assert.Equal(t, model.StatusReview, got.Status)
	assert.Equal(t, f.snapshot(), c.Collection().Tasks())
}

func TestKeyboardDrag(t *testing.T) {
	f := newFakeStore(task("1", model.StatusTodo, 0, 0))
	c := loadedCoordinator(t, f)
	a := NewAdapter(c)

	cmd, err := a.Release()
	assert.NoError(t, err)
	assert.Nil(t, cmd)

	a.Grab("1", model.StatusTodo)
	ev, ok := a.Dragging()
	require.True(t, ok)
	assert.Equal(t, model.StatusTodo, ev.To)

	a.Hover(model.StatusProgress)
	a.Hover(model.StatusDone)
	cmd, err = a.Release()
	require.NoError(t, err)
	require.NotNil(t, cmd)
	_, ok = a.Dragging()
	assert.False(t, ok)
	drain(t, c, cmd)

	got, _ := c.Collection().FindByID("1")
	assert.Equal(t, model.StatusDone, got.Status)

	a.Grab("1", model.StatusDone)
	a.Hover(model.StatusTodo)
	a.CancelDrag()
	cmd, _ = a.Release()
	assert.Nil(t, cmd)
}

func TestDropOnDayAndClick(t *testing.T) {
	f := newFakeStore(task("1", model.StatusTodo, 0, 0))
	c := loadedCoordinator(t, f)
	a := NewAdapter(c)

	cmd, err := a.DropOnDay("1", time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	drain(t, c, cmd)
	got, _ := c.Collection().FindByID("1")
	assert.Equal(t, "2025-06-09", got.DueKey())

	a.Click("1")
	assert.True(t, c.IsSelected("1"))
	a.Click("1")
	assert.False(t, c.IsSelected("1"))
}
