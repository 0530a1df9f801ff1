package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/model"
)

func TestDetailShowsTask(t *testing.T) {
	today := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	sprintID := int64(3)
	task := model.Task{
		ID:         "42",
		Title:      "Wire the poller",
		Priority:   model.PriorityHigh,
		Status:     model.StatusProgress,
		DueDate:    model.DatePtr(2026, 3, 10),
		Subtasks:   model.Subtasks{Completed: 1, Total: 4},
		Progress:   25,
		SprintID:   &sprintID,
		SprintName: "Sprint 3",
	}

	m := New(keys.DefaultKeyMap(), 80, 30)
	assert.False(t, m.Active())
	assert.Contains(t, m.View(), "No task selected")

	m.Open(task, board.Applying, today)
	require.True(t, m.Active())
	out := m.View()
	assert.Contains(t, out, "Wire the poller")
	assert.Contains(t, out, "Sprint 3")
	assert.Contains(t, out, "1/4")
	assert.Contains(t, out, "applying")
}

func TestDetailBackClosesViaMessage(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.Open(model.Task{ID: "1", Title: "x"}, board.Idle, time.Now())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())

	m.Close()
	assert.False(t, m.Active())
}
