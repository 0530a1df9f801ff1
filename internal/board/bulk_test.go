package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
)

func bulkFixture(t *testing.T) (*fakeStore, *Coordinator) {
	t.Helper()
	f := newFakeStore(
		task("1", model.StatusTodo, 0, 0),
		task("2", model.StatusProgress, 0, 0),
		task("3", model.StatusReview, 0, 0),
		task("4", model.StatusDone, 0, 0),
	)
	f.board = model.SprintBoard{Sprints: []model.Sprint{{ID: 10, Title: "Sprint A"}}}
	return f, loadedCoordinator(t, f)
}

func TestSelection(t *testing.T) {
	_, c := bulkFixture(t)

	c.Select("2")
	c.Select("1")
	c.Select("2")
	c.Select("missing")
	assert.Equal(t, []string{"2", "1"}, c.Selected())

	c.Toggle("2")
	assert.False(t, c.IsSelected("2"))
	c.Toggle("3")
	assert.Equal(t, []string{"1", "3"}, c.Selected())

	tasks := c.SelectedTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "Task 1", tasks[0].Title)

	c.ClearSelection()
	assert.Empty(t, c.Selected())
}

func TestBulkArchiveSuccess(t *testing.T) {
	f, c := bulkFixture(t)
	c.Select("1")
	c.Select("3")

	cmd, err := c.BulkArchive(c.Selected())
	require.NoError(t, err)
	assert.Equal(t, 2, c.Collection().Len())
	assert.Equal(t, Applying, c.State("1"))
	assert.Equal(t, []string{"1", "3"}, c.Selected())
	assert.True(t, c.Busy())

	drain(t, c, cmd)
	assert.Empty(t, c.Selected())
	assert.Equal(t, Idle, c.State("1"))
	assert.False(t, c.Busy())
	assert.Equal(t, 2, f.callCount("ArchiveTask"))
	assert.Equal(t, f.snapshot(), c.Collection().Tasks())
	assert.Empty(t, c.Notices())
}

func TestBulkDeletePartialFailureReloadsOnce(t *testing.T) {
	f, c := bulkFixture(t)
	f.failIDs["2"] = true
	loads := f.callCount("GetTasks")
	c.Select("1")
	c.Select("2")
	c.Select("4")

	cmd, err := c.BulkDelete(c.Selected())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Collection().Len())

	msg := cmd()
	res, ok := msg.(BulkResultMsg)
	require.True(t, ok)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, res.IDs, 3)

	reload, handled := c.Handle(msg)
	require.True(t, handled)
	assert.Empty(t, c.Selected())
	assert.Equal(t, Reconciling, c.State("2"))
	drain(t, c, reload)

	assert.Equal(t, loads+1, f.callCount("GetTasks"))
	assert.Equal(t, []string{"2", "3"}, taskIDs(c.Collection().Tasks()))
	assert.Equal(t, Idle, c.State("2"))

	n, ok := c.TakeNotice()
	require.True(t, ok)
	assert.Equal(t, Blocking, n.Level)
	assert.Equal(t, KindBulkDelete, n.Kind)
	_, ok = c.TakeNotice()
	assert.False(t, ok)
}

func TestBulkMoveToSprint(t *testing.T) {
	f, c := bulkFixture(t)

	cmd, err := c.BulkMoveToSprint([]string{"1", "2", "missing"}, ptr(int64(10)))
	require.NoError(t, err)
	for _, id := range []string{"1", "2"} {
		got, _ := c.Collection().FindByID(id)
		assert.Equal(t, "Sprint A", got.SprintName)
	}
	drain(t, c, cmd)
	assert.Equal(t, 2, f.callCount("AssignSprint"))
	assert.Equal(t, f.snapshot(), c.Collection().Tasks())

	cmd, err = c.BulkMoveToSprint([]string{"1"}, nil)
	require.NoError(t, err)
	drain(t, c, cmd)
	got, _ := c.Collection().FindByID("1")
	assert.True(t, got.InBacklog())
}

func TestBulkMoveToUnknownSprint(t *testing.T) {
	f, c := bulkFixture(t)
	c.Select("1")

	cmd, err := c.BulkMoveToSprint([]string{"1"}, ptr(int64(99)))
	assert.Nil(t, cmd)
	assert.True(t, model.IsValidationError(err))
	assert.Zero(t, f.callCount("AssignSprint"))
	assert.Equal(t, []string{"1"}, c.Selected())
}

func TestBulkWithNothingApplied(t *testing.T) {
	f, c := bulkFixture(t)
	c.Select("1")

	cmd, err := c.BulkArchive([]string{"missing"})
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Empty(t, c.Selected())
	assert.Zero(t, f.callCount("ArchiveTask"))
}

func TestReloadPrunesSelection(t *testing.T) {
	f, c := bulkFixture(t)
	c.Select("1")
	c.Select("2")

	f.mu.Lock()
	f.tasks = f.tasks[1:]
	f.mu.Unlock()

	drain(t, c, c.Reload())
	assert.Equal(t, []string{"2"}, c.Selected())
}
