package remote_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/remote"
	"github.com/nhle/brainmint/internal/server"
	"github.com/nhle/brainmint/internal/testutil"
)

var backendNow = time.Date(2026, 3, 18, 9, 30, 0, 0, time.UTC)

type staticRepos []model.Repo

func (r staticRepos) ListRepos(context.Context, model.Integration) ([]model.Repo, error) {
	return r, nil
}

func newBackend(t *testing.T) remote.Store {
	t.Helper()
	ts := testutil.NewTestServer(t,
		server.WithClock(func() time.Time { return backendNow }),
		server.WithRepoLister(staticRepos{{Name: "brainmint", IsPrivate: true}}),
		server.WithAuthToken("tok"),
	)
	return ts.Remote(remote.WithToken("tok"))
}

func TestBackendTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newBackend(t)

	err := st.CreateSprints(ctx, model.SprintPlan{
		UserID:       1,
		ProjectTitle: "Launch",
		Sprints: []model.SprintSpec{
			{Title: "Sprint 1", StartDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)

	board, err := st.GetSprints(ctx, 1)
	require.NoError(t, err)
	require.Len(t, board.Sprints, 1)
	require.NotNil(t, board.Current)
	assert.Equal(t, "Launch", board.ProjectTitle)
	sprintID := board.Sprints[0].ID

	created, err := st.CreateTask(ctx, model.TaskDraft{
		UserID:        1,
		Title:         "Ship login",
		Priority:      model.PriorityHigh,
		DueDate:       model.DatePtr(2026, 3, 20),
		SubtasksTotal: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, model.StatusTodo, created.Status)
	assert.Equal(t, "2026-03-20", created.DueKey())

	require.NoError(t, st.UpdateStatus(ctx, created.ID, model.StatusProgress))
	require.NoError(t, st.UpdatePriority(ctx, created.ID, model.PriorityLow))

	name, err := st.AssignSprint(ctx, created.ID, &sprintID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", name)

	auto, err := st.IncrementSubtask(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.False(t, auto)

	require.NoError(t, st.UpdateDueDate(ctx, created.ID, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)))

	tasks, err := st.GetTasks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, model.StatusProgress, got.Status)
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, model.Subtasks{Completed: 1, Total: 2}, got.Subtasks)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, "Sprint 1", got.SprintName)
	assert.Equal(t, "2026-03-25", got.DueKey())

	auto, err = st.IncrementSubtask(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.True(t, auto)

	require.NoError(t, st.ArchiveTask(ctx, created.ID))
	archived, err := st.GetArchived(ctx, 1)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, model.StatusDone, archived[0].RestoreStatus())

	restored, err := st.UnarchiveTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, restored)

	summary, err := st.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.Stats.CompletionRate)

	report, err := st.GetSprintReport(ctx, 1)
	require.NoError(t, err)
	require.Len(t, report.Historical, 1)
	assert.Equal(t, 1, report.Historical[0].Completed)

	require.NoError(t, st.DeleteTask(ctx, created.ID))
	err = st.DeleteTask(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, st.DeleteSprints(ctx, 1))
	board, err = st.GetSprints(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, board.Sprints)
	assert.Nil(t, board.Current)
}

func TestBackendPagesAndIntegrations(t *testing.T) {
	ctx := context.Background()
	st := newBackend(t)

	page, err := st.CreatePage(ctx, 1, "Ideas", "a, b")
	require.NoError(t, err)
	require.NotZero(t, page.ID)
	require.NoError(t, st.UpdatePage(ctx, page.ID, "More ideas", "c"))

	pages, err := st.GetPages(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "More ideas", pages[0].Title)

	require.NoError(t, st.DeletePage(ctx, page.ID))
	pages, err = st.GetPages(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, pages)

	require.NoError(t, st.SaveIntegration(ctx, 1, model.Integration{
		Platform:    model.PlatformGitLab,
		RepoURL:     "https://gitlab.com/me/brainmint",
		AccessToken: "glpat",
	}))
	list, err := st.GetIntegrations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.PlatformGitLab, list[0].Platform)
	assert.False(t, list[0].ConnectedAt.IsZero())
	assert.Empty(t, list[0].AccessToken)

	repos, err := st.GetRepos(ctx, 1, model.PlatformGitLab)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.True(t, repos[0].IsPrivate)

	_, err = st.GetRepos(ctx, 1, model.PlatformGitHub)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, st.DeleteIntegration(ctx, 1, model.PlatformGitLab))
	list, err = st.GetIntegrations(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBackendRejectsMissingToken(t *testing.T) {
	ts := testutil.NewTestServer(t, server.WithAuthToken("tok"))

	_, err := ts.Remote().GetTasks(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, model.IsNetworkError(err))
}
