package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/integration"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/server"
	"github.com/nhle/brainmint/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

func newServer(t *testing.T, opts ...server.Option) *testutil.TestServer {
	t.Helper()
	opts = append([]server.Option{server.WithClock(func() time.Time { return fixedNow })}, opts...)
	return testutil.NewTestServer(t, opts...)
}

func call(t *testing.T, ts *testutil.TestServer, method, path string, body any, out any) int {
	t.Helper()
	return callWithHeader(t, ts, method, path, body, out, nil)
}

func callWithHeader(t *testing.T, ts *testutil.TestServer, method, path string, body any, out any, header http.Header) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.BaseURL()+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type taskJSON struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Priority   string  `json:"priority"`
	DueDate    *string `json:"dueDate"`
	Avatar     string  `json:"avatar"`
	Progress   int     `json:"progress"`
	IsWIP      bool    `json:"isWIP"`
	SprintID   *int64  `json:"sprint_id"`
	SprintName *string `json:"sprint_name"`
	Subtasks   struct {
		Completed int `json:"completed"`
		Total     int `json:"total"`
	} `json:"subtasks"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func createTask(t *testing.T, ts *testutil.TestServer, body map[string]any) taskJSON {
	t.Helper()
	if _, ok := body["user_id"]; !ok {
		body["user_id"] = 1
	}
	var out struct {
		Message string   `json:"message"`
		Task    taskJSON `json:"task"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/create/", body, &out))
	require.Equal(t, "Task created", out.Message)
	return out.Task
}

func listTasks(t *testing.T, ts *testutil.TestServer) map[string][]taskJSON {
	t.Helper()
	var out map[string][]taskJSON
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/tasks/?user_id=1", nil, &out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newServer(t)

	var out map[string]string
	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/healthz", nil, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.BaseURL()+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))

	resp, err = ts.Client().Get(ts.BaseURL() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthToken(t *testing.T) {
	ts := newServer(t, server.WithAuthToken("s3cret"))

	var errOut errorJSON
	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/tasks/?user_id=1", nil, &errOut))
	assert.NotEmpty(t, errOut.Error)

	wrong := http.Header{"Authorization": {"Bearer nope"}}
	assert.Equal(t, http.StatusUnauthorized, callWithHeader(t, ts, http.MethodGet, "/tasks/?user_id=1", nil, nil, wrong))

	right := http.Header{"Authorization": {"Bearer s3cret"}}
	assert.Equal(t, http.StatusOK, callWithHeader(t, ts, http.MethodGet, "/tasks/?user_id=1", nil, nil, right))

	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/healthz", nil, nil), "health check stays open")
}

func TestListTasksSegmented(t *testing.T) {
	ts := newServer(t)

	createTask(t, ts, map[string]any{"title": "Write docs", "priority": "High", "due_date": "2026-03-20"})
	createTask(t, ts, map[string]any{"title": "Fix bug", "status": "progress", "subtasks_total": 4})
	createTask(t, ts, map[string]any{"title": "Other user", "user_id": 2})

	got := listTasks(t, ts)
	require.Len(t, got, 4)
	assert.Empty(t, got["review"])
	assert.Empty(t, got["done"])

	require.Len(t, got["todo"], 1)
	todo := got["todo"][0]
	assert.Equal(t, "Write docs", todo.Title)
	assert.Equal(t, "High", todo.Priority)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, "2026-03-20", *todo.DueDate)
	assert.NotEmpty(t, todo.Avatar)
	assert.False(t, todo.IsWIP)
	assert.Nil(t, todo.SprintID)

	require.Len(t, got["progress"], 1)
	wip := got["progress"][0]
	assert.True(t, wip.IsWIP)
	assert.Equal(t, "Medium", wip.Priority)
	assert.Equal(t, 4, wip.Subtasks.Total)
	assert.Nil(t, wip.DueDate)
}

func TestListTasksRequiresUser(t *testing.T) {
	ts := newServer(t)

	for _, path := range []string{"/tasks/", "/tasks/?user_id=abc", "/tasks/?user_id=0"} {
		var out errorJSON
		assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, path, nil, &out), path)
		assert.Equal(t, "user_id required", out.Error)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	ts := newServer(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing user", body: map[string]any{"title": "x"}},
		{name: "blank title", body: map[string]any{"user_id": 1, "title": "  "}},
		{name: "bad priority", body: map[string]any{"user_id": 1, "title": "x", "priority": "Urgent"}},
		{name: "bad date", body: map[string]any{"user_id": 1, "title": "x", "due_date": "tomorrow"}},
		{name: "malformed id", body: map[string]any{"user_id": "one", "title": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out errorJSON
			assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/create/", tt.body, &out))
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestCreateTaskAcceptsStringIDs(t *testing.T) {
	ts := newServer(t)

	task := createTask(t, ts, map[string]any{"user_id": "1", "title": "Stringly"})
	assert.NotEmpty(t, task.ID)
	assert.Len(t, listTasks(t, ts)["todo"], 1)
}

func TestUpdateStatusAndPriority(t *testing.T) {
	ts := newServer(t)
	task := createTask(t, ts, map[string]any{"title": "Move me"})

	var msg map[string]any
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/update-status/",
		map[string]any{"task_id": task.ID, "status": "review"}, &msg))
	assert.Equal(t, "Task status updated", msg["message"])

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/update-priority/",
		map[string]any{"task_id": task.ID, "priority": "Low"}, &msg))

	got := listTasks(t, ts)
	require.Len(t, got["review"], 1)
	assert.Equal(t, "Low", got["review"][0].Priority)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/update-status/",
		map[string]any{"task_id": task.ID, "status": "blocked"}, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/update-status/",
		map[string]any{"task_id": task.ID}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodPost, "/tasks/update-status/",
		map[string]any{"task_id": 999, "status": "done"}, nil))
}

func TestIncrementSubtaskAutoCompletes(t *testing.T) {
	ts := newServer(t)
	task := createTask(t, ts, map[string]any{"title": "Checklist", "subtasks_total": 2})

	var out struct {
		Message       string `json:"message"`
		AutoCompleted bool   `json:"auto_completed"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/increment-subtask/",
		map[string]any{"task_id": task.ID, "subtasks_completed": 1}, &out))
	assert.False(t, out.AutoCompleted)
	assert.Equal(t, 50, listTasks(t, ts)["todo"][0].Progress)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/increment-subtask/",
		map[string]any{"task_id": task.ID, "subtasks_completed": 2}, &out))
	assert.True(t, out.AutoCompleted)

	got := listTasks(t, ts)
	assert.Empty(t, got["todo"])
	require.Len(t, got["done"], 1)
	assert.Equal(t, 100, got["done"][0].Progress)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/increment-subtask/",
		map[string]any{"task_id": task.ID}, nil), "missing count")
}

func TestAssignSprint(t *testing.T) {
	ts := newServer(t)
	board := testutil.SeedSprints(t, ts.Store, 1, model.Day(fixedNow), "Sprint A")
	sprintID := board.Sprints[0].ID
	task := createTask(t, ts, map[string]any{"title": "Plan"})

	var out struct {
		SprintID   *int64  `json:"sprint_id"`
		SprintName *string `json:"sprint_name"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/assign-sprint/",
		map[string]any{"task_id": task.ID, "sprint_id": sprintID}, &out))
	require.NotNil(t, out.SprintID)
	assert.Equal(t, sprintID, *out.SprintID)
	require.NotNil(t, out.SprintName)
	assert.Equal(t, "Sprint A", *out.SprintName)

	listed := listTasks(t, ts)["todo"][0]
	require.NotNil(t, listed.SprintName)
	assert.Equal(t, "Sprint A", *listed.SprintName)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/assign-sprint/",
		map[string]any{"task_id": task.ID, "sprint_id": nil}, &out))
	assert.Nil(t, out.SprintID)
	assert.Nil(t, out.SprintName)
	assert.Nil(t, listTasks(t, ts)["todo"][0].SprintID)

	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodPost, "/tasks/assign-sprint/",
		map[string]any{"task_id": task.ID, "sprint_id": 9999}, nil))
}

func TestUpdateDueDate(t *testing.T) {
	ts := newServer(t)
	task := createTask(t, ts, map[string]any{"title": "Reschedule"})

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/update-due-date/",
		map[string]any{"task_id": task.ID, "due_date": "2026-04-01T00:00:00Z"}, nil))
	got := listTasks(t, ts)["todo"][0]
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-04-01", *got.DueDate)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/update-due-date/",
		map[string]any{"task_id": task.ID}, nil))
}

func TestArchiveRoundTrip(t *testing.T) {
	ts := newServer(t)
	task := createTask(t, ts, map[string]any{"title": "Shelve", "status": "review"})

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/archive/",
		map[string]any{"task_id": task.ID}, nil))
	assert.Empty(t, listTasks(t, ts)["review"])

	var archived struct {
		Tasks []struct {
			ID             string `json:"id"`
			Title          string `json:"title"`
			PreviousStatus string `json:"previous_status"`
		} `json:"tasks"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/tasks/archived/?user_id=1", nil, &archived))
	require.Len(t, archived.Tasks, 1)
	assert.Equal(t, task.ID, archived.Tasks[0].ID)
	assert.Equal(t, "review", archived.Tasks[0].PreviousStatus)

	var restored struct {
		Message    string `json:"message"`
		RestoredTo string `json:"restored_to"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/unarchive/",
		map[string]any{"task_id": task.ID}, &restored))
	assert.Equal(t, "review", restored.RestoredTo)
	assert.Equal(t, "Task restored to review", restored.Message)
	assert.Len(t, listTasks(t, ts)["review"], 1)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/tasks/archived/?user_id=1", nil, &archived))
	assert.Empty(t, archived.Tasks)
}

func TestDeleteTask(t *testing.T) {
	ts := newServer(t)
	task := createTask(t, ts, map[string]any{"title": "Gone"})

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/tasks/delete/",
		map[string]any{"task_id": task.ID}, nil))
	assert.Empty(t, listTasks(t, ts)["todo"])

	var out errorJSON
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodPost, "/tasks/delete/",
		map[string]any{"task_id": task.ID}, &out))
	assert.NotEmpty(t, out.Error)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/delete/",
		map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/tasks/delete/", "not an object", nil))
}

func TestSprintLifecycle(t *testing.T) {
	ts := newServer(t)

	body := map[string]any{
		"user_id":       1,
		"project_title": "Launch",
		"sprints": []map[string]string{
			{"title": "Sprint 1", "start_date": "2026-03-09", "end_date": "2026-03-22"},
			{"title": "Sprint 2", "start_date": "2026-03-23", "end_date": "2026-04-05"},
		},
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/sprints/create/", body, nil))

	type sprint struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		TaskCount int    `json:"task_count"`
	}
	var out struct {
		Sprints       []sprint `json:"sprints"`
		ProjectTitle  string   `json:"project_title"`
		CurrentSprint *sprint  `json:"current_sprint"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/sprints/?user_id=1", nil, &out))
	require.Len(t, out.Sprints, 2)
	assert.Equal(t, "Launch", out.ProjectTitle)
	assert.Equal(t, "2026-03-09", out.Sprints[0].StartDate)
	require.NotNil(t, out.CurrentSprint)
	assert.Equal(t, "Sprint 1", out.CurrentSprint.Title)

	createTask(t, ts, map[string]any{"title": "In sprint", "sprint_id": out.Sprints[0].ID})
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/sprints/?user_id=1", nil, &out))
	assert.Equal(t, 1, out.Sprints[0].TaskCount)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/sprints/delete/", map[string]any{"user_id": 1}, nil))
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/sprints/?user_id=1", nil, &out))
	assert.Empty(t, out.Sprints)
	assert.Nil(t, out.CurrentSprint)
	assert.Nil(t, listTasks(t, ts)["todo"][0].SprintID, "tasks fall back to the backlog")
}

func TestCreateSprintsValidation(t *testing.T) {
	ts := newServer(t)

	var out errorJSON
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/sprints/create/",
		map[string]any{"user_id": 1}, &out))
	assert.Equal(t, "user_id and sprints required", out.Error)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/sprints/create/",
		map[string]any{
			"user_id": 1,
			"sprints": []map[string]string{{"title": "S", "start_date": "March", "end_date": "2026-03-22"}},
		}, nil))

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/sprints/create/",
		map[string]any{
			"user_id": 1,
			"sprints": []map[string]string{{"title": "S", "start_date": "2026-03-22", "end_date": "2026-03-01"}},
		}, nil), "end before start")
}

func TestSummaryAndReport(t *testing.T) {
	ts := newServer(t)
	board := testutil.SeedSprints(t, ts.Store, 1, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), "Sprint 1")
	sprintID := board.Sprints[0].ID
	createTask(t, ts, map[string]any{"title": "Late", "due_date": "2026-03-01", "sprint_id": sprintID})
	createTask(t, ts, map[string]any{"title": "Finished", "status": "done", "sprint_id": sprintID})

	var summary model.Summary
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/summary/?user_id=1", nil, &summary))
	assert.Equal(t, 1, summary.Stats.OpenTasks)
	assert.Equal(t, 1, summary.Stats.Overdue)
	assert.Equal(t, 1, summary.Stats.SprintsActive)
	assert.Equal(t, 1, summary.Stats.TotalSprints)
	assert.Equal(t, 50, summary.Stats.CompletionRate)

	var report model.SprintReport
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/sprint-report/?user_id=1", nil, &report))
	require.Len(t, report.Historical, 1)
	assert.Equal(t, "Sprint 1", report.Historical[0].Name)
	assert.True(t, report.Historical[0].IsCurrent)
	assert.Equal(t, 2, report.Historical[0].Committed)
	assert.Equal(t, 1, report.Historical[0].Completed)
	assert.Equal(t, 2, report.Summary.TotalTasks)
	assert.Equal(t, 50, report.Summary.CompletionRate)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, "/summary/", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, "/sprint-report/", nil, nil))
}

func TestPages(t *testing.T) {
	ts := newServer(t)

	var created struct {
		Message string     `json:"message"`
		Page    model.Page `json:"page"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/pages/create/",
		map[string]any{"user_id": 1, "title": "Retro notes", "body": "went well"}, &created))
	assert.Equal(t, "Retro notes", created.Page.Title)
	require.NotZero(t, created.Page.ID)

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/pages/update/",
		map[string]any{"page_id": created.Page.ID, "title": "Retro", "body": "updated"}, nil))

	var list struct {
		Pages []model.Page `json:"pages"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/pages/?user_id=1", nil, &list))
	require.Len(t, list.Pages, 1)
	assert.Equal(t, "Retro", list.Pages[0].Title)
	assert.Equal(t, "updated", list.Pages[0].Body)

	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/pages/create/",
		map[string]any{"user_id": 1}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodPost, "/pages/update/",
		map[string]any{"page_id": 404, "title": "x"}, nil))

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/pages/delete/",
		map[string]any{"page_id": created.Page.ID}, nil))
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/pages/?user_id=1", nil, &list))
	assert.Empty(t, list.Pages)
}

type stubLister struct {
	repos []model.Repo
	err   error
	got   model.Integration
}

func (s *stubLister) ListRepos(_ context.Context, in model.Integration) ([]model.Repo, error) {
	s.got = in
	return s.repos, s.err
}

func TestIntegrations(t *testing.T) {
	lister := &stubLister{repos: []model.Repo{{Name: "brainmint", URL: "https://github.com/me/brainmint", Stars: 3}}}
	ts := newServer(t, server.WithRepoLister(lister))

	var msg map[string]string
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/integrations/save/", map[string]any{
		"user_id":      1,
		"platform":     "github",
		"repo_url":     "https://github.com/me/brainmint",
		"access_token": " tok ",
	}, &msg))
	assert.Equal(t, "github connected successfully", msg["message"])

	var list struct {
		Integrations map[string]struct {
			RepoURL     string `json:"repo_url"`
			ConnectedAt string `json:"connected_at"`
			AccessToken string `json:"access_token"`
		} `json:"integrations"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/integrations/?user_id=1", nil, &list))
	require.Contains(t, list.Integrations, "github")
	assert.Equal(t, "https://github.com/me/brainmint", list.Integrations["github"].RepoURL)
	assert.NotEmpty(t, list.Integrations["github"].ConnectedAt)
	assert.Empty(t, list.Integrations["github"].AccessToken, "tokens never leave the server")

	var repos struct {
		Repos []model.Repo `json:"repos"`
	}
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/integrations/repos/?user_id=1&platform=github", nil, &repos))
	require.Len(t, repos.Repos, 1)
	assert.Equal(t, "brainmint", repos.Repos[0].Name)
	assert.Equal(t, "tok", lister.got.AccessToken)

	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, "/integrations/repos/?user_id=1&platform=gitlab", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, "/integrations/repos/?user_id=1", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodPost, "/integrations/save/", map[string]any{
		"user_id": 1, "platform": "sourceforge", "repo_url": "x",
	}, nil))

	require.Equal(t, http.StatusOK, call(t, ts, http.MethodPost, "/integrations/delete/",
		map[string]any{"user_id": 1, "platform": "github"}, &msg))
	assert.Equal(t, "github disconnected", msg["message"])
	require.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/integrations/?user_id=1", nil, &list))
	assert.Empty(t, list.Integrations)
}

func TestListReposUpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "auth", err: &integration.AuthError{Platform: model.PlatformGitHub, Message: "bad token"}, want: http.StatusBadGateway},
		{name: "upstream", err: errors.New("connection reset"), want: http.StatusBadGateway},
		{name: "validation", err: &model.ValidationError{Field: "platform", Message: "nope"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newServer(t, server.WithRepoLister(&stubLister{err: tt.err}))
			require.NoError(t, ts.Store.SaveIntegration(context.Background(), 1, model.Integration{
				Platform: model.PlatformGitHub, RepoURL: "r", AccessToken: "t",
			}))

			var out errorJSON
			assert.Equal(t, tt.want, call(t, ts, http.MethodGet, "/integrations/repos/?user_id=1&platform=github", nil, &out))
			assert.NotEmpty(t, out.Error)
		})
	}
}

func TestListReposWithoutLister(t *testing.T) {
	ts := newServer(t)
	assert.Equal(t, http.StatusServiceUnavailable,
		call(t, ts, http.MethodGet, "/integrations/repos/?user_id=1&platform=github", nil, nil))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	srv := server.New(testutil.NewTestStore(t), testutil.DiscardLogger(), server.WithAccessLog(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
