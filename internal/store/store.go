package store

import (
	"context"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// Store defines the persistence interface behind the REST backend.
// Task and sprint ids are the database's integer keys.
type Store interface {
	// === Tasks ===

	ListTasks(ctx context.Context, userID int64) ([]model.Task, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	CreateTask(ctx context.Context, draft model.TaskDraft) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status model.Status) error
	UpdateTaskPriority(ctx context.Context, id int64, priority model.Priority) error
	SetSubtasksCompleted(ctx context.Context, id int64, completed int) (autoCompleted bool, err error)
	AssignSprint(ctx context.Context, id int64, sprintID *int64) (sprintName string, err error)
	UpdateDueDate(ctx context.Context, id int64, due time.Time) error
	DeleteTask(ctx context.Context, id int64) error

	// === Archive ===

	ArchiveTask(ctx context.Context, id int64) error
	UnarchiveTask(ctx context.Context, id int64) (model.Status, error)
	ListArchived(ctx context.Context, userID int64) ([]model.ArchivedTask, error)

	// === Sprints ===

	ListSprints(ctx context.Context, userID int64, today time.Time) (*model.SprintBoard, error)
	ReplaceSprints(ctx context.Context, plan model.SprintPlan) error
	DeleteSprints(ctx context.Context, userID int64) error

	// === Reports ===

	Summary(ctx context.Context, userID int64, today time.Time) (model.Summary, error)
	SprintReport(ctx context.Context, userID int64, today time.Time) (model.SprintReport, error)

	// === Pages ===

	ListPages(ctx context.Context, userID int64) ([]model.Page, error)
	CreatePage(ctx context.Context, page model.Page) (model.Page, error)
	UpdatePage(ctx context.Context, page model.Page) error
	DeletePage(ctx context.Context, id int64) error

	// === Integrations ===

	ListIntegrations(ctx context.Context, userID int64) ([]model.Integration, error)
	GetIntegration(ctx context.Context, userID int64, platform model.Platform) (model.Integration, error)
	SaveIntegration(ctx context.Context, userID int64, in model.Integration) error
	DeleteIntegration(ctx context.Context, userID int64, platform model.Platform) error

	// === Lifecycle ===

	Ping(ctx context.Context) error
	Close() error
}
