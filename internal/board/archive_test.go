package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
)

func loadedShelf(t *testing.T, f *fakeStore) *ArchiveShelf {
	t.Helper()
	s := NewArchiveShelf(f, 1)
	drain(t, s, s.Init())
	require.True(t, s.Loaded())
	return s
}

func TestArchiveRoundTrip(t *testing.T) {
	f := newFakeStore(task("1", model.StatusReview, 0, 0))
	c := loadedCoordinator(t, f)

	cmd, err := c.ArchiveTask("1")
	require.NoError(t, err)
	drain(t, c, cmd)

	s := loadedShelf(t, f)
	require.Len(t, s.Tasks(), 1)
	assert.Equal(t, model.StatusReview, s.Tasks()[0].PreviousStatus)

	drain(t, s, s.Unarchive("1"))
	assert.Empty(t, s.Tasks())
	n, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Equal(t, Toast, n.Level)
	assert.Equal(t, `Restored "Task 1" to Review`, n.Message)

	drain(t, c, c.Reload())
	got, err := c.Collection().FindByID("1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReview, got.Status)
}

func TestUnarchiveDefaultsToTodo(t *testing.T) {
	f := newFakeStore()
	f.archived = []model.ArchivedTask{{Task: task("7", model.StatusArchived, 0, 0)}}
	s := loadedShelf(t, f)

	drain(t, s, s.Unarchive("7"))
	n, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Contains(t, n.Message, "To Do")
	assert.Equal(t, model.StatusTodo, f.snapshot()[0].Status)
}

func TestDeleteArchivedFailureReloads(t *testing.T) {
	f := newFakeStore()
	f.archived = []model.ArchivedTask{
		{Task: task("7", model.StatusArchived, 0, 0), PreviousStatus: model.StatusDone},
	}
	f.failIDs["7"] = true
	s := loadedShelf(t, f)
	loads := f.callCount("GetArchived")

	cmd := s.DeleteArchived("7")
	require.NotNil(t, cmd)
	assert.Empty(t, s.Tasks())
	assert.True(t, s.Busy())
	drain(t, s, cmd)
	assert.False(t, s.Busy())

	assert.Equal(t, loads+1, f.callCount("GetArchived"))
	assert.Len(t, s.Tasks(), 1)
	n, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Equal(t, Blocking, n.Level)
}

func TestShelfUnknownID(t *testing.T) {
	s := loadedShelf(t, newFakeStore())
	assert.Nil(t, s.Unarchive("nope"))
	assert.Nil(t, s.DeleteArchived("nope"))

	_, ok := s.Handle(ShelfResultMsg{Owner: "someone else"})
	assert.False(t, ok)
}
