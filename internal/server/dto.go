package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// placeholderAvatar is the avatar every task carries until users have
// profile pictures.
const placeholderAvatar = "https://placehold.co/32x32"

// jsonID accepts an identifier sent as a JSON number or a numeric
// string. Zero means the field was absent.
type jsonID int64

var _ json.Unmarshaler = (*jsonID)(nil)

func (j *jsonID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*j = 0
		return nil
	}
	data = bytes.Trim(data, `"`)
	if len(data) == 0 {
		*j = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identifier %s", data)
	}
	*j = jsonID(n)
	return nil
}

type subtasksDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// taskDTO is a board task on the wire. Its status is implied by the
// segment it is listed under.
type taskDTO struct {
	ID         string      `json:"id"`
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

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newTaskDTO(t model.Task) taskDTO {
	return taskDTO{
		ID:         t.ID,
		Title:      t.Title,
		Priority:   string(t.Priority),
		DueDate:    optional(t.DueKey()),
		Avatar:     placeholderAvatar,
		Subtasks:   subtasksDTO{Completed: t.Subtasks.Completed, Total: t.Subtasks.Total},
		Progress:   t.Progress,
		IsWIP:      t.IsWIP(),
		SprintID:   t.SprintID,
		SprintName: optional(t.SprintName),
	}
}

// segmentTasks splits tasks into the four board columns. Every column
// is present even when empty.
func segmentTasks(tasks []model.Task) map[model.Status][]taskDTO {
	out := make(map[model.Status][]taskDTO, len(model.BoardStatuses))
	for _, st := range model.BoardStatuses {
		out[st] = []taskDTO{}
	}
	for _, t := range tasks {
		if _, ok := out[t.Status]; !ok {
			continue
		}
		out[t.Status] = append(out[t.Status], newTaskDTO(t))
	}
	return out
}

// archivedDTO is a row of the archived shelf.
type archivedDTO struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Priority       string      `json:"priority"`
	DueDate        string      `json:"due_date"`
	SprintID       *int64      `json:"sprint_id"`
	SprintName     *string     `json:"sprint_name"`
	PreviousStatus string      `json:"previous_status"`
	Subtasks       subtasksDTO `json:"subtasks"`
}

func newArchivedDTO(a model.ArchivedTask) archivedDTO {
	return archivedDTO{
		ID:             a.ID,
		Title:          a.Title,
		Priority:       string(a.Priority),
		DueDate:        a.DueKey(),
		SprintID:       a.SprintID,
		SprintName:     optional(a.SprintName),
		PreviousStatus: string(a.RestoreStatus()),
		Subtasks:       subtasksDTO{Completed: a.Subtasks.Completed, Total: a.Subtasks.Total},
	}
}

type sprintDTO struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TaskCount      int    `json:"task_count"`
	CompletedCount int    `json:"completed_count"`
}

func newSprintDTO(s model.Sprint) sprintDTO {
	return sprintDTO{
		ID:             s.ID,
		Title:          s.Title,
		StartDate:      model.FormatDate(s.StartDate),
		EndDate:        model.FormatDate(s.EndDate),
		TaskCount:      s.TaskCount,
		CompletedCount: s.CompletedCount,
	}
}

type sprintsResponse struct {
	Sprints       []sprintDTO `json:"sprints"`
	ProjectTitle  string      `json:"project_title"`
	CurrentSprint *sprintDTO  `json:"current_sprint"`
}

type integrationDTO struct {
	RepoURL     string `json:"repo_url"`
	ConnectedAt string `json:"connected_at"`
}

func newIntegrationDTO(in model.Integration) integrationDTO {
	return integrationDTO{
		RepoURL:     in.RepoURL,
		ConnectedAt: in.ConnectedAt.UTC().Format(time.RFC3339),
	}
}

// === Requests ===

type createTaskRequest struct {
	UserID        jsonID `json:"user_id"`
	Title         string `json:"title"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	DueDate       string `json:"due_date"`
	SubtasksTotal int    `json:"subtasks_total"`
	SprintID      jsonID `json:"sprint_id"`
}

type taskIDRequest struct {
	TaskID jsonID `json:"task_id"`
}

type updateStatusRequest struct {
	TaskID jsonID `json:"task_id"`
	Status string `json:"status"`
}

type updatePriorityRequest struct {
	TaskID   jsonID `json:"task_id"`
	Priority string `json:"priority"`
}

type incrementSubtaskRequest struct {
	TaskID            jsonID `json:"task_id"`
	SubtasksCompleted *int   `json:"subtasks_completed"`
}

type assignSprintRequest struct {
	TaskID   jsonID `json:"task_id"`
	SprintID jsonID `json:"sprint_id"`
}

type updateDueDateRequest struct {
	TaskID  jsonID `json:"task_id"`
	DueDate string `json:"due_date"`
}

type sprintSpecRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type createSprintsRequest struct {
	UserID       jsonID              `json:"user_id"`
	ProjectTitle string              `json:"project_title"`
	Sprints      []sprintSpecRequest `json:"sprints"`
}

type userIDRequest struct {
	UserID jsonID `json:"user_id"`
}

type createPageRequest struct {
	UserID jsonID `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type updatePageRequest struct {
	PageID jsonID `json:"page_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type pageIDRequest struct {
	PageID jsonID `json:"page_id"`
}

type saveIntegrationRequest struct {
	UserID      jsonID `json:"user_id"`
	Platform    string `json:"platform"`
	RepoURL     string `json:"repo_url"`
	AccessToken string `json:"access_token"`
}

type deleteIntegrationRequest struct {
	UserID   jsonID `json:"user_id"`
	Platform string `json:"platform"`
}
