package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nhle/brainmint/internal/model"
)

// flexID accepts an identifier encoded as either a JSON string or a
// JSON number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*f = flexID(n.String())
	return nil
}

// subtasksDTO mirrors the {completed, total} object.
type subtasksDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// taskDTO is a task as returned by GET /tasks/ and POST /tasks/create/.
// Status is implied by the segment it arrives in.
type taskDTO struct {
	ID         flexID      `json:"id"`
	Title      string      `json:"title"`
	Priority   string      `json:"priority"`
	DueDate    *string     `json:"dueDate"`
	Avatar     string      `json:"avatar"`
	Subtasks   subtasksDTO `json:"subtasks"`
	Progress   int         `json:"progress"`
	IsWIP      bool        `json:"isWIP"`
	SprintID   *int64      `json:"sprint_id"`
	SprintName *string     `json:"sprint_name"`
}

// toTask converts the wire form into a normalized model.Task.
func (d taskDTO) toTask(status model.Status) (model.Task, error) {
	t := model.Task{
		ID:       string(d.ID),
		Title:    d.Title,
		Priority: model.Priority(d.Priority),
		Status:   status,
		Subtasks: model.Subtasks{
			Completed: d.Subtasks.Completed,
			Total:     d.Subtasks.Total,
		},
		Progress: d.Progress,
		SprintID: d.SprintID,
		Avatar:   d.Avatar,
	}
	if d.SprintName != nil {
		t.SprintName = *d.SprintName
	}
	if d.DueDate != nil {
		due, err := model.ParseDate(*d.DueDate)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: %w", d.ID, err)
		}
		t.DueDate = due
	}
	t.Normalize()
	return t, nil
}

// tasksResponse is the status-segmented GET /tasks/ payload.
type tasksResponse map[model.Status][]taskDTO

// flatten walks the segments in board order and tags every task with
// the status of its segment.
func (r tasksResponse) flatten() ([]model.Task, error) {
	var tasks []model.Task
	for _, st := range model.BoardStatuses {
		for _, dto := range r[st] {
			t, err := dto.toTask(st)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

type createTaskRequest struct {
	UserID        int64  `json:"user_id"`
	Title         string `json:"title"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	DueDate       string `json:"due_date"`
	SubtasksTotal int    `json:"subtasks_total"`
	SprintID      *int64 `json:"sprint_id"`
}

type createTaskResponse struct {
	Message string   `json:"message"`
	Task    *taskDTO `json:"task"`
}

type taskIDRequest struct {
	TaskID string `json:"task_id"`
}

type updateStatusRequest struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type updatePriorityRequest struct {
	TaskID   string `json:"task_id"`
	Priority string `json:"priority"`
}

type incrementSubtaskRequest struct {
	TaskID            string `json:"task_id"`
	SubtasksCompleted int    `json:"subtasks_completed"`
}

type incrementSubtaskResponse struct {
	AutoCompleted bool `json:"auto_completed"`
}

type assignSprintRequest struct {
	TaskID   string `json:"task_id"`
	SprintID *int64 `json:"sprint_id"`
}

type assignSprintResponse struct {
	SprintName *string `json:"sprint_name"`
}

type updateDueDateRequest struct {
	TaskID  string `json:"task_id"`
	DueDate string `json:"due_date"`
}

type unarchiveResponse struct {
	RestoredTo string `json:"restored_to"`
}

// archivedDTO is a row of GET /tasks/archived/.
type archivedDTO struct {
	ID             flexID      `json:"id"`
	Title          string      `json:"title"`
	Priority       string      `json:"priority"`
	DueDate        string      `json:"due_date"`
	SprintID       *int64      `json:"sprint_id"`
	SprintName     *string     `json:"sprint_name"`
	PreviousStatus string      `json:"previous_status"`
	Subtasks       subtasksDTO `json:"subtasks"`
}

func (d archivedDTO) toArchived() (model.ArchivedTask, error) {
	t := model.Task{
		ID:       string(d.ID),
		Title:    d.Title,
		Priority: model.Priority(d.Priority),
		Status:   model.StatusArchived,
		Subtasks: model.Subtasks{
			Completed: d.Subtasks.Completed,
			Total:     d.Subtasks.Total,
		},
		SprintID: d.SprintID,
	}
	if d.SprintName != nil {
		t.SprintName = *d.SprintName
	}
	due, err := model.ParseDate(d.DueDate)
	if err != nil {
		return model.ArchivedTask{}, fmt.Errorf("archived task %s: %w", d.ID, err)
	}
	t.DueDate = due
	t.Normalize()
	return model.ArchivedTask{
		Task:           t,
		PreviousStatus: model.Status(d.PreviousStatus),
	}, nil
}

type archivedResponse struct {
	Tasks []archivedDTO `json:"tasks"`
}

// sprintDTO is a sprint row of GET /sprints/.
type sprintDTO struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
}

func (d sprintDTO) toSprint() (model.Sprint, error) {
	start, err := model.ParseDate(d.StartDate)
	if err != nil {
		return model.Sprint{}, fmt.Errorf("sprint %d start: %w", d.ID, err)
	}
	end, err := model.ParseDate(d.EndDate)
	if err != nil {
		return model.Sprint{}, fmt.Errorf("sprint %d end: %w", d.ID, err)
	}
	return model.Sprint{
		ID:             d.ID,
		Title:          d.Title,
		StartDate:      start,
		EndDate:        end,
		TaskCount:      d.TaskCount,
		CompletedCount: d.CompletedCount,
	}, nil
}

type sprintsResponse struct {
	Sprints       []sprintDTO `json:"sprints"`
	ProjectTitle  string      `json:"project_title"`
	CurrentSprint *sprintDTO  `json:"current_sprint"`
}

type sprintSpecDTO struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type createSprintsRequest struct {
	UserID       int64           `json:"user_id"`
	ProjectTitle string          `json:"project_title"`
	Sprints      []sprintSpecDTO `json:"sprints"`
}

type userIDRequest struct {
	UserID int64 `json:"user_id"`
}

type pagesResponse struct {
	Pages []model.Page `json:"pages"`
}

type createPageRequest struct {
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type createPageResponse struct {
	Page model.Page `json:"page"`
}

type updatePageRequest struct {
	PageID int64  `json:"page_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type pageIDRequest struct {
	PageID int64 `json:"page_id"`
}

type integrationDTO struct {
	RepoURL     string `json:"repo_url"`
	ConnectedAt string `json:"connected_at"`
}

type integrationsResponse struct {
	Integrations map[model.Platform]integrationDTO `json:"integrations"`
}

type saveIntegrationRequest struct {
	UserID      int64  `json:"user_id"`
	Platform    string `json:"platform"`
	RepoURL     string `json:"repo_url"`
	AccessToken string `json:"access_token"`
}

type deleteIntegrationRequest struct {
	UserID   int64  `json:"user_id"`
	Platform string `json:"platform"`
}

type reposResponse struct {
	Repos []model.Repo `json:"repos"`
}
