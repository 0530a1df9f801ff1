package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// Store is the full contract of the remote task/sprint store. Every
// page and command receives one injected Store; tests substitute the
// in-process server.
type Store interface {
	GetTasks(ctx context.Context, userID int64) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.TaskDraft) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID string, status model.Status) error
	UpdatePriority(ctx context.Context, taskID string, priority model.Priority) error
	IncrementSubtask(ctx context.Context, taskID string, completed int) (bool, error)
	AssignSprint(ctx context.Context, taskID string, sprintID *int64) (string, error)
	UpdateDueDate(ctx context.Context, taskID string, due time.Time) error
	DeleteTask(ctx context.Context, taskID string) error
	ArchiveTask(ctx context.Context, taskID string) error
	UnarchiveTask(ctx context.Context, taskID string) (model.Status, error)
	GetArchived(ctx context.Context, userID int64) ([]model.ArchivedTask, error)

	GetSprints(ctx context.Context, userID int64) (*model.SprintBoard, error)
	CreateSprints(ctx context.Context, plan model.SprintPlan) error
	DeleteSprints(ctx context.Context, userID int64) error

	GetSummary(ctx context.Context, userID int64) (*model.Summary, error)
	GetSprintReport(ctx context.Context, userID int64) (*model.SprintReport, error)

	GetPages(ctx context.Context, userID int64) ([]model.Page, error)
	CreatePage(ctx context.Context, userID int64, title, body string) (*model.Page, error)
	UpdatePage(ctx context.Context, pageID int64, title, body string) error
	DeletePage(ctx context.Context, pageID int64) error

	GetIntegrations(ctx context.Context, userID int64) ([]model.Integration, error)
	SaveIntegration(ctx context.Context, userID int64, in model.Integration) error
	DeleteIntegration(ctx context.Context, userID int64, platform model.Platform) error
	GetRepos(ctx context.Context, userID int64, platform model.Platform) ([]model.Repo, error)
}

// HTTPStore implements Store over the REST API.
type HTTPStore struct {
	client *Client
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore wraps a Client.
func NewHTTPStore(c *Client) *HTTPStore {
	return &HTTPStore{client: c}
}

// Health checks that the backend is reachable and ready.
func (s *HTTPStore) Health(ctx context.Context) error {
	return s.client.Get(ctx, "/healthz", nil, nil)
}

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
}

// GetTasks fetches the user's active tasks and flattens the
// status-segmented response into board order.
func (s *HTTPStore) GetTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	var resp tasksResponse
	if err := s.client.Get(ctx, "/tasks/", userQuery(userID), &resp); err != nil {
		return nil, err
	}
	return resp.flatten()
}

// CreateTask posts a draft. The returned task is nil when the server
// does not echo the created record.
func (s *HTTPStore) CreateTask(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
	req := createTaskRequest{
		UserID:        draft.UserID,
		Title:         draft.Title,
		Priority:      string(draft.Priority),
		Status:        string(draft.Status),
		DueDate:       model.FormatDate(draft.DueDate),
		SubtasksTotal: draft.SubtasksTotal,
		SprintID:      draft.SprintID,
	}

	var resp createTaskResponse
	if err := s.client.Post(ctx, "/tasks/create/", req, &resp); err != nil {
		return nil, err
	}
	if resp.Task == nil || resp.Task.ID == "" {
		return nil, nil
	}

	task, err := resp.Task.toTask(draft.Status)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus moves a task to another column.
func (s *HTTPStore) UpdateStatus(ctx context.Context, taskID string, status model.Status) error {
	return s.client.Post(ctx, "/tasks/update-status/", updateStatusRequest{
		TaskID: taskID,
		Status: string(status),
	}, nil)
}

// UpdatePriority changes a task's priority.
func (s *HTTPStore) UpdatePriority(ctx context.Context, taskID string, priority model.Priority) error {
	return s.client.Post(ctx, "/tasks/update-priority/", updatePriorityRequest{
		TaskID:   taskID,
		Priority: string(priority),
	}, nil)
}

// IncrementSubtask stores the new completed count. It reports whether
// the server moved the task to done as a result.
func (s *HTTPStore) IncrementSubtask(ctx context.Context, taskID string, completed int) (bool, error) {
	var resp incrementSubtaskResponse
	err := s.client.Post(ctx, "/tasks/increment-subtask/", incrementSubtaskRequest{
		TaskID:            taskID,
		SubtasksCompleted: completed,
	}, &resp)
	if err != nil {
		return false, err
	}
	return resp.AutoCompleted, nil
}

// AssignSprint sets or clears (nil) a task's sprint and returns the
// sprint title the server resolved.
func (s *HTTPStore) AssignSprint(ctx context.Context, taskID string, sprintID *int64) (string, error) {
	var resp assignSprintResponse
	err := s.client.Post(ctx, "/tasks/assign-sprint/", assignSprintRequest{
		TaskID:   taskID,
		SprintID: sprintID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SprintName == nil {
		return "", nil
	}
	return *resp.SprintName, nil
}

// UpdateDueDate reschedules a task.
func (s *HTTPStore) UpdateDueDate(ctx context.Context, taskID string, due time.Time) error {
	return s.client.Post(ctx, "/tasks/update-due-date/", updateDueDateRequest{
		TaskID:  taskID,
		DueDate: due.Format(model.DateLayout),
	}, nil)
}

// DeleteTask permanently removes a task.
func (s *HTTPStore) DeleteTask(ctx context.Context, taskID string) error {
	return s.client.Post(ctx, "/tasks/delete/", taskIDRequest{TaskID: taskID}, nil)
}

// ArchiveTask moves a task to the archived shelf.
func (s *HTTPStore) ArchiveTask(ctx context.Context, taskID string) error {
	return s.client.Post(ctx, "/tasks/archive/", taskIDRequest{TaskID: taskID}, nil)
}

// UnarchiveTask restores a task and returns the column it went back to.
func (s *HTTPStore) UnarchiveTask(ctx context.Context, taskID string) (model.Status, error) {
	var resp unarchiveResponse
	if err := s.client.Post(ctx, "/tasks/unarchive/", taskIDRequest{TaskID: taskID}, &resp); err != nil {
		return "", err
	}
	if resp.RestoredTo == "" {
		return model.StatusTodo, nil
	}
	return model.Status(resp.RestoredTo), nil
}

// GetArchived lists the user's archived tasks.
func (s *HTTPStore) GetArchived(ctx context.Context, userID int64) ([]model.ArchivedTask, error) {
	var resp archivedResponse
	if err := s.client.Get(ctx, "/tasks/archived/", userQuery(userID), &resp); err != nil {
		return nil, err
	}

	out := make([]model.ArchivedTask, 0, len(resp.Tasks))
	for _, dto := range resp.Tasks {
		a, err := dto.toArchived()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GetSprints lists the user's sprints with the project title and the
// sprint covering today, if any.
func (s *HTTPStore) GetSprints(ctx context.Context, userID int64) (*model.SprintBoard, error) {
	var resp sprintsResponse
	if err := s.client.Get(ctx, "/sprints/", userQuery(userID), &resp); err != nil {
		return nil, err
	}

	board := &model.SprintBoard{
		Sprints:      make([]model.Sprint, 0, len(resp.Sprints)),
		ProjectTitle: resp.ProjectTitle,
	}
	for _, dto := range resp.Sprints {
		sp, err := dto.toSprint()
		if err != nil {
			return nil, err
		}
		board.Sprints = append(board.Sprints, sp)
	}
	if resp.CurrentSprint != nil {
		cur, err := resp.CurrentSprint.toSprint()
		if err != nil {
			return nil, err
		}
		board.Current = &cur
	}
	return board, nil
}

// CreateSprints replaces the user's sprints with the plan.
func (s *HTTPStore) CreateSprints(ctx context.Context, plan model.SprintPlan) error {
	req := createSprintsRequest{
		UserID:       plan.UserID,
		ProjectTitle: plan.ProjectTitle,
		Sprints:      make([]sprintSpecDTO, 0, len(plan.Sprints)),
	}
	for _, sp := range plan.Sprints {
		req.Sprints = append(req.Sprints, sprintSpecDTO{
			Title:     sp.Title,
			StartDate: sp.StartDate.Format(model.DateLayout),
			EndDate:   sp.EndDate.Format(model.DateLayout),
		})
	}
	return s.client.Post(ctx, "/sprints/create/", req, nil)
}

// DeleteSprints removes every sprint of the user. Member tasks return
// to the backlog.
func (s *HTTPStore) DeleteSprints(ctx context.Context, userID int64) error {
	return s.client.Post(ctx, "/sprints/delete/", userIDRequest{UserID: userID}, nil)
}

// GetSummary fetches the dashboard summary.
func (s *HTTPStore) GetSummary(ctx context.Context, userID int64) (*model.Summary, error) {
	var resp model.Summary
	if err := s.client.Get(ctx, "/summary/", userQuery(userID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSprintReport fetches the retrospective report.
func (s *HTTPStore) GetSprintReport(ctx context.Context, userID int64) (*model.SprintReport, error) {
	var resp model.SprintReport
	if err := s.client.Get(ctx, "/sprint-report/", userQuery(userID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPages lists notes pages, most recently updated first.
func (s *HTTPStore) GetPages(ctx context.Context, userID int64) ([]model.Page, error) {
	var resp pagesResponse
	if err := s.client.Get(ctx, "/pages/", userQuery(userID), &resp); err != nil {
		return nil, err
	}
	return resp.Pages, nil
}

// CreatePage adds a notes page.
func (s *HTTPStore) CreatePage(ctx context.Context, userID int64, title, body string) (*model.Page, error) {
	var resp createPageResponse
	err := s.client.Post(ctx, "/pages/create/", createPageRequest{
		UserID: userID,
		Title:  title,
		Body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Page, nil
}

// UpdatePage rewrites a page's title and body.
func (s *HTTPStore) UpdatePage(ctx context.Context, pageID int64, title, body string) error {
	return s.client.Post(ctx, "/pages/update/", updatePageRequest{
		PageID: pageID,
		Title:  title,
		Body:   body,
	}, nil)
}

// DeletePage removes a page.
func (s *HTTPStore) DeletePage(ctx context.Context, pageID int64) error {
	return s.client.Post(ctx, "/pages/delete/", pageIDRequest{PageID: pageID}, nil)
}

// GetIntegrations lists the connected platforms.
func (s *HTTPStore) GetIntegrations(ctx context.Context, userID int64) ([]model.Integration, error) {
	var resp integrationsResponse
	if err := s.client.Get(ctx, "/integrations/", userQuery(userID), &resp); err != nil {
		return nil, err
	}

	out := make([]model.Integration, 0, len(resp.Integrations))
	for _, p := range []model.Platform{model.PlatformGitHub, model.PlatformGitLab, model.PlatformBitbucket} {
		dto, ok := resp.Integrations[p]
		if !ok {
			continue
		}
		in := model.Integration{Platform: p, RepoURL: dto.RepoURL}
		if ts, err := time.Parse(time.RFC3339, dto.ConnectedAt); err == nil {
			in.ConnectedAt = ts
		}
		out = append(out, in)
	}
	return out, nil
}

// SaveIntegration connects (or reconnects) a platform.
func (s *HTTPStore) SaveIntegration(ctx context.Context, userID int64, in model.Integration) error {
	if !in.Platform.Valid() {
		return &model.ValidationError{
			Field:   "platform",
			Message: fmt.Sprintf("unsupported platform %q", in.Platform),
		}
	}
	return s.client.Post(ctx, "/integrations/save/", saveIntegrationRequest{
		UserID:      userID,
		Platform:    string(in.Platform),
		RepoURL:     in.RepoURL,
		AccessToken: in.AccessToken,
	}, nil)
}

// DeleteIntegration disconnects a platform.
func (s *HTTPStore) DeleteIntegration(ctx context.Context, userID int64, platform model.Platform) error {
	return s.client.Post(ctx, "/integrations/delete/", deleteIntegrationRequest{
		UserID:   userID,
		Platform: string(platform),
	}, nil)
}

// GetRepos lists repositories visible through a connected platform.
func (s *HTTPStore) GetRepos(ctx context.Context, userID int64, platform model.Platform) ([]model.Repo, error) {
	q := userQuery(userID)
	q.Set("platform", string(platform))

	var resp reposResponse
	if err := s.client.Get(ctx, "/integrations/repos/", q, &resp); err != nil {
		return nil, err
	}
	return resp.Repos, nil
}
