package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/brainmint/internal/model"
)

// taskRow is a tasks row joined with its sprint title.
type taskRow struct {
	ID                int64          `db:"id"`
	UserID            int64          `db:"user_id"`
	Title             string         `db:"title"`
	Priority          string         `db:"priority"`
	Status            string         `db:"status"`
	PreviousStatus    sql.NullString `db:"previous_status"`
	DueDate           sql.NullString `db:"due_date"`
	SubtasksTotal     int            `db:"subtasks_total"`
	SubtasksCompleted int            `db:"subtasks_completed"`
	SprintID          sql.NullInt64  `db:"sprint_id"`
	SprintName        sql.NullString `db:"sprint_name"`
	CreatedAt         time.Time      `db:"created_at"`
}

const selectTasks = `
	SELECT
		t.id, t.user_id, t.title, t.priority, t.status, t.previous_status,
		t.due_date, t.subtasks_total, t.subtasks_completed, t.sprint_id,
		s.title AS sprint_name, t.created_at
	FROM tasks t
	LEFT JOIN sprints s ON s.id = t.sprint_id`

// toTask converts the row into a normalized model.Task. Tasks without
// subtasks report 100% once done.
func (r taskRow) toTask() model.Task {
	t := model.Task{
		ID:       strconv.FormatInt(r.ID, 10),
		Title:    r.Title,
		Priority: model.Priority(r.Priority),
		Status:   model.Status(r.Status),
		Subtasks: model.Subtasks{
			Completed: r.SubtasksCompleted,
			Total:     r.SubtasksTotal,
		},
		SprintID:   int64Ptr(r.SprintID),
		SprintName: r.SprintName.String,
	}
	if r.DueDate.Valid {
		if due, err := model.ParseDate(r.DueDate.String); err == nil {
			t.DueDate = due
		}
	}
	if t.Subtasks.Total == 0 && t.Status == model.StatusDone {
		t.Progress = 100
	}
	t.Normalize()
	return t
}

func (s *SQLStore) selectTaskRows(ctx context.Context, where string, args ...any) ([]taskRow, error) {
	var rows []taskRow
	query := selectTasks + " WHERE " + where + " ORDER BY t.id"
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return rows, nil
}

// ListTasks returns the user's board tasks in creation order. Archived
// tasks are excluded.
func (s *SQLStore) ListTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := s.selectTaskRows(ctx, "t.user_id = ? AND t.status != ?", userID, string(model.StatusArchived))
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

// GetTask retrieves a single task by ID.
func (s *SQLStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var r taskRow
	if err := s.db.GetContext(ctx, &r, selectTasks+" WHERE t.id = ?", id); err != nil {
		return model.Task{}, notFound(err, "task", id)
	}
	return r.toTask(), nil
}

// sprintTitle returns the title of a sprint, or model.ErrNotFound.
func sprintTitle(ctx context.Context, q sqlx.QueryerContext, id int64) (string, error) {
	var title string
	if err := sqlx.GetContext(ctx, q, &title, "SELECT title FROM sprints WHERE id = ?", id); err != nil {
		return "", notFound(err, "sprint", id)
	}
	return title, nil
}

// CreateTask validates the draft, inserts it with no completed
// subtasks and returns the stored task.
func (s *SQLStore) CreateTask(ctx context.Context, draft model.TaskDraft) (model.Task, error) {
	if err := draft.Validate(); err != nil {
		return model.Task{}, err
	}
	if draft.SprintID != nil {
		if _, err := sprintTitle(ctx, s.db, *draft.SprintID); err != nil {
			return model.Task{}, err
		}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			user_id, title, priority, status, due_date,
			subtasks_total, subtasks_completed, sprint_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		draft.UserID, draft.Title, string(draft.Priority), string(draft.Status),
		nullString(model.FormatDate(draft.DueDate)),
		draft.SubtasksTotal, nullInt64(draft.SprintID), time.Now().UTC(),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Task{}, fmt.Errorf("reading new task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// UpdateTaskStatus moves a task to another board column.
func (s *SQLStore) UpdateTaskStatus(ctx context.Context, id int64, status model.Status) error {
	if !status.Valid() {
		return &model.ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", status)}
	}
	result, err := s.db.ExecContext(ctx, "UPDATE tasks SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("updating status of task %d: %w", id, err)
	}
	return requireAffected(result, "task", id)
}

// UpdateTaskPriority changes a task's priority.
func (s *SQLStore) UpdateTaskPriority(ctx context.Context, id int64, priority model.Priority) error {
	if !priority.Valid() {
		return &model.ValidationError{Field: "priority", Message: fmt.Sprintf("invalid priority %q", priority)}
	}
	result, err := s.db.ExecContext(ctx, "UPDATE tasks SET priority = ? WHERE id = ?", string(priority), id)
	if err != nil {
		return fmt.Errorf("updating priority of task %d: %w", id, err)
	}
	return requireAffected(result, "task", id)
}

// SetSubtasksCompleted stores the completed subtask count, clamped to
// the task's total. Reaching the total moves the task to done and
// reports autoCompleted.
func (s *SQLStore) SetSubtasksCompleted(ctx context.Context, id int64, completed int) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, "SELECT subtasks_total FROM tasks WHERE id = ?", id); err != nil {
		return false, notFound(err, "task", id)
	}
	completed = max(0, min(completed, total))

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET subtasks_completed = ? WHERE id = ?", completed, id,
	); err != nil {
		return false, fmt.Errorf("updating subtasks of task %d: %w", id, err)
	}

	autoCompleted := total > 0 && completed >= total
	if autoCompleted {
		if _, err := tx.ExecContext(ctx,
			"UPDATE tasks SET status = ? WHERE id = ?", string(model.StatusDone), id,
		); err != nil {
			return false, fmt.Errorf("completing task %d: %w", id, err)
		}
	}

	return autoCompleted, tx.Commit()
}

// AssignSprint moves a task into a sprint, or to the backlog when
// sprintID is nil, and returns the sprint's title.
func (s *SQLStore) AssignSprint(ctx context.Context, id int64, sprintID *int64) (string, error) {
	var name string
	if sprintID != nil {
		title, err := sprintTitle(ctx, s.db, *sprintID)
		if err != nil {
			return "", err
		}
		name = title
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET sprint_id = ? WHERE id = ?", nullInt64(sprintID), id,
	)
	if err != nil {
		return "", fmt.Errorf("assigning sprint to task %d: %w", id, err)
	}
	return name, requireAffected(result, "task", id)
}

// UpdateDueDate reschedules a task to the calendar day of due.
func (s *SQLStore) UpdateDueDate(ctx context.Context, id int64, due time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET due_date = ? WHERE id = ?", due.Format(model.DateLayout), id,
	)
	if err != nil {
		return fmt.Errorf("updating due date of task %d: %w", id, err)
	}
	return requireAffected(result, "task", id)
}

// DeleteTask removes a task, archived or not.
func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return requireAffected(result, "task", id)
}

// ArchiveTask hides a task from the board and remembers its column.
// Archiving an archived task does nothing.
func (s *SQLStore) ArchiveTask(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.GetContext(ctx, &status, "SELECT status FROM tasks WHERE id = ?", id); err != nil {
		return notFound(err, "task", id)
	}
	if model.Status(status) == model.StatusArchived {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET previous_status = ?, status = ? WHERE id = ?",
		status, string(model.StatusArchived), id,
	); err != nil {
		return fmt.Errorf("archiving task %d: %w", id, err)
	}
	return tx.Commit()
}

// UnarchiveTask returns an archived task to the column it left, or to
// todo when that column is unknown. Tasks that are not archived keep
// their status.
func (s *SQLStore) UnarchiveTask(ctx context.Context, id int64) (model.Status, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var row struct {
		Status         string         `db:"status"`
		PreviousStatus sql.NullString `db:"previous_status"`
	}
	if err := tx.GetContext(ctx, &row,
		"SELECT status, previous_status FROM tasks WHERE id = ?", id,
	); err != nil {
		return "", notFound(err, "task", id)
	}
	if model.Status(row.Status) != model.StatusArchived {
		return model.Status(row.Status), nil
	}

	restored := model.ArchivedTask{PreviousStatus: model.Status(row.PreviousStatus.String)}.RestoreStatus()
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET status = ?, previous_status = NULL WHERE id = ?", string(restored), id,
	); err != nil {
		return "", fmt.Errorf("unarchiving task %d: %w", id, err)
	}
	return restored, tx.Commit()
}

// ListArchived returns the user's archived tasks in creation order.
func (s *SQLStore) ListArchived(ctx context.Context, userID int64) ([]model.ArchivedTask, error) {
	rows, err := s.selectTaskRows(ctx, "t.user_id = ? AND t.status = ?", userID, string(model.StatusArchived))
	if err != nil {
		return nil, err
	}
	out := make([]model.ArchivedTask, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.ArchivedTask{
			Task:           r.toTask(),
			PreviousStatus: model.Status(r.PreviousStatus.String),
		})
	}
	return out, nil
}
