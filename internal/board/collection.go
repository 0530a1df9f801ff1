// Package board holds one page's task snapshot and applies optimistic
// mutations to it.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/nhle/brainmint/internal/model"
)

// TaskStore is the part of the remote store a board page talks to.
type TaskStore interface {
	GetTasks(ctx context.Context, userID int64) ([]model.Task, error)
	GetSprints(ctx context.Context, userID int64) (*model.SprintBoard, error)
	CreateTask(ctx context.Context, draft model.TaskDraft) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID string, status model.Status) error
	UpdatePriority(ctx context.Context, taskID string, priority model.Priority) error
	IncrementSubtask(ctx context.Context, taskID string, completed int) (bool, error)
	AssignSprint(ctx context.Context, taskID string, sprintID *int64) (string, error)
	UpdateDueDate(ctx context.Context, taskID string, due time.Time) error
	DeleteTask(ctx context.Context, taskID string) error
	ArchiveTask(ctx context.Context, taskID string) error
	CreateSprints(ctx context.Context, plan model.SprintPlan) error
	DeleteSprints(ctx context.Context, userID int64) error
}

// Collection is the flat, identity-keyed task snapshot of one page.
// Per-column views are derived from it, never stored.
type Collection struct {
	tasks        []model.Task
	index        map[string]int
	sprints      []model.Sprint
	current      *model.Sprint
	projectTitle string
}

// NewCollection builds a collection from already-fetched data. A nil
// board means no sprints.
func NewCollection(tasks []model.Task, board *model.SprintBoard) *Collection {
	c := &Collection{index: make(map[string]int, len(tasks))}
	for _, t := range tasks {
		c.Upsert(t)
	}
	if board != nil {
		c.sprints = slices.Clone(board.Sprints)
		c.projectTitle = board.ProjectTitle
		if board.Current != nil {
			cur := *board.Current
			c.current = &cur
		}
	}
	return c
}

// Load fetches tasks and sprints concurrently. A failed sprint fetch is
// logged and treated as an empty sprint list; a failed task fetch
// fails the load.
func Load(ctx context.Context, s TaskStore, userID int64) (*Collection, error) {
	return load(ctx, s, userID, slog.Default())
}

func load(ctx context.Context, s TaskStore, userID int64, logger *slog.Logger) (*Collection, error) {
	if userID <= 0 {
		return nil, &model.ValidationError{Field: "user_id", Message: "a user is required"}
	}

	var (
		tasks     []model.Task
		board     *model.SprintBoard
		taskErr   error
		sprintErr error
		wg        conc.WaitGroup
	)
	wg.Go(func() { tasks, taskErr = s.GetTasks(ctx, userID) })
	wg.Go(func() { board, sprintErr = s.GetSprints(ctx, userID) })
	wg.Wait()

	if taskErr != nil {
		return nil, fmt.Errorf("loading tasks: %w", taskErr)
	}
	if sprintErr != nil {
		logger.Warn("sprint fetch failed, continuing without sprints",
			slog.Int64("user_id", userID),
			slog.String("error", sprintErr.Error()),
		)
		board = nil
	}
	return NewCollection(tasks, board), nil
}

// Len returns the number of tasks.
func (c *Collection) Len() int { return len(c.tasks) }

// Tasks returns a copy of the tasks in collection order.
func (c *Collection) Tasks() []model.Task { return slices.Clone(c.tasks) }

// Sprints returns a copy of the sprint list.
func (c *Collection) Sprints() []model.Sprint { return slices.Clone(c.sprints) }

// CurrentSprint returns the sprint covering today, or nil.
func (c *Collection) CurrentSprint() *model.Sprint {
	if c.current == nil {
		return nil
	}
	cur := *c.current
	return &cur
}

// ProjectTitle returns the title set during sprint setup.
func (c *Collection) ProjectTitle() string { return c.projectTitle }

// Sprint looks up a sprint by id.
func (c *Collection) Sprint(id int64) (model.Sprint, bool) {
	for _, s := range c.sprints {
		if s.ID == id {
			return s, true
		}
	}
	return model.Sprint{}, false
}

// SprintName returns the title of sprint id, or "" when unknown.
func (c *Collection) SprintName(id int64) string {
	s, _ := c.Sprint(id)
	return s.Title
}

// FindByID returns a copy of the task, or model.ErrNotFound.
func (c *Collection) FindByID(id string) (model.Task, error) {
	i, ok := c.index[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	return c.tasks[i], nil
}

// Upsert normalizes t and replaces the task with the same id in place,
// or appends it.
func (c *Collection) Upsert(t model.Task) {
	t.Normalize()
	if i, ok := c.index[t.ID]; ok {
		c.tasks[i] = t
		return
	}
	c.index[t.ID] = len(c.tasks)
	c.tasks = append(c.tasks, t)
}

// Remove deletes the task and returns it.
func (c *Collection) Remove(id string) (model.Task, error) {
	i, ok := c.index[id]
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	removed := c.tasks[i]
	c.tasks = slices.Delete(c.tasks, i, i+1)
	delete(c.index, id)
	for j := i; j < len(c.tasks); j++ {
		c.index[c.tasks[j].ID] = j
	}
	return removed, nil
}

// orphanAll returns every task to the backlog and drops the sprints.
func (c *Collection) orphanAll() {
	for i := range c.tasks {
		c.tasks[i].SprintID = nil
		c.tasks[i].SprintName = ""
	}
	c.sprints = nil
	c.current = nil
}
