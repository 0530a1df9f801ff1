package board

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/testutil"
)

type taskShape struct {
	Status     model.Status
	Priority   model.Priority
	Subtasks   model.Subtasks
	Progress   int
	SprintName string
}

func shapes(tasks []model.Task) map[string]taskShape {
	out := make(map[string]taskShape, len(tasks))
	for _, t := range tasks {
		out[t.ID] = taskShape{
			Status:     t.Status,
			Priority:   t.Priority,
			Subtasks:   t.Subtasks,
			Progress:   t.Progress,
			SprintName: t.SprintName,
		}
	}
	return out
}

// The optimistic snapshot must match what the backend reports once
// every mutation has settled.
func TestCoordinatorAgreesWithBackend(t *testing.T) {
	ts := testutil.NewTestServer(t)
	remote := ts.Remote()

	sprints := testutil.SeedSprints(t, ts.Store, 1, model.Day(time.Now()), "Sprint 1")
	sprintID := sprints.Sprints[0].ID
	checklist := testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 1, Title: "Checklist", SubtasksTotal: 2})
	doomed := testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 1, Title: "Doomed"})

	c := NewCoordinator(remote, 1)
	drain(t, c, c.Init())
	require.True(t, c.Loaded())
	require.NoError(t, c.LoadErr())
	require.Equal(t, 2, c.Collection().Len())

	steps := []func() (tea.Cmd, error){
		func() (tea.Cmd, error) { return c.IncrementSubtask(checklist.ID) },
		func() (tea.Cmd, error) { return c.AssignSprint(checklist.ID, &sprintID) },
		func() (tea.Cmd, error) { return c.UpdatePriority(checklist.ID, model.PriorityHigh) },
		func() (tea.Cmd, error) { return c.IncrementSubtask(checklist.ID) },
		func() (tea.Cmd, error) { return c.ArchiveTask(doomed.ID) },
		func() (tea.Cmd, error) {
			return c.CreateTask(model.TaskDraft{Title: "Follow up", Status: model.StatusReview})
		},
	}
	for i, step := range steps {
		cmd, err := step()
		require.NoError(t, err, "step %d", i)
		drain(t, c, cmd)
	}

	got, err := c.Collection().FindByID(checklist.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)
	assert.Equal(t, "Sprint 1", got.SprintName)

	fresh, err := remote.GetTasks(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, shapes(fresh), shapes(c.Collection().Tasks()))

	archived, err := remote.GetArchived(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, doomed.ID, archived[0].ID)
}
