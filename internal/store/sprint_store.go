package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/brainmint/internal/model"
)

// sprintRow is a sprints row with its member task counts.
type sprintRow struct {
	ID             int64          `db:"id"`
	ProjectTitle   string         `db:"project_title"`
	Title          string         `db:"title"`
	StartDate      sql.NullString `db:"start_date"`
	EndDate        sql.NullString `db:"end_date"`
	TaskCount      int            `db:"task_count"`
	CompletedCount int            `db:"completed_count"`
}

func (r sprintRow) toSprint() model.Sprint {
	s := model.Sprint{
		ID:             r.ID,
		Title:          r.Title,
		TaskCount:      r.TaskCount,
		CompletedCount: r.CompletedCount,
	}
	s.StartDate, _ = model.ParseDate(r.StartDate.String)
	s.EndDate, _ = model.ParseDate(r.EndDate.String)
	return s
}

// ListSprints returns the user's sprints in creation order with task
// counts, the project title and the sprint covering today.
func (s *SQLStore) ListSprints(ctx context.Context, userID int64, today time.Time) (*model.SprintBoard, error) {
	var rows []sprintRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT
			s.id, s.project_title, s.title, s.start_date, s.end_date,
			COUNT(t.id) AS task_count,
			COALESCE(SUM(CASE WHEN t.status = 'done' THEN 1 ELSE 0 END), 0) AS completed_count
		FROM sprints s
		LEFT JOIN tasks t ON t.sprint_id = s.id
		WHERE s.user_id = ?
		GROUP BY s.id, s.project_title, s.title, s.start_date, s.end_date
		ORDER BY s.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sprints: %w", err)
	}

	board := &model.SprintBoard{Sprints: make([]model.Sprint, 0, len(rows))}
	for _, r := range rows {
		if board.ProjectTitle == "" {
			board.ProjectTitle = r.ProjectTitle
		}
		sp := r.toSprint()
		board.Sprints = append(board.Sprints, sp)
		if sp.Covers(today) {
			cur := sp
			board.Current = &cur
		}
	}
	return board, nil
}

// clearSprints returns the user's tasks to the backlog and deletes the
// user's sprints.
func clearSprints(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET sprint_id = NULL
		WHERE user_id = ? AND sprint_id IS NOT NULL`,
		userID,
	); err != nil {
		return fmt.Errorf("orphaning tasks of user %d: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sprints WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("deleting sprints of user %d: %w", userID, err)
	}
	return nil
}

// ReplaceSprints validates plan and swaps it in for every sprint the
// user already has.
func (s *SQLStore) ReplaceSprints(ctx context.Context, plan model.SprintPlan) error {
	if err := plan.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearSprints(ctx, tx, plan.UserID); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO sprints (user_id, project_title, title, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing sprint insert: %w", err)
	}
	defer stmt.Close()

	for _, sp := range plan.Sprints {
		if _, err := stmt.ExecContext(ctx,
			plan.UserID, plan.ProjectTitle, sp.Title,
			sp.StartDate.Format(model.DateLayout), sp.EndDate.Format(model.DateLayout),
		); err != nil {
			return fmt.Errorf("inserting sprint %q: %w", sp.Title, err)
		}
	}

	return tx.Commit()
}

// DeleteSprints removes every sprint of the user. Member tasks stay and
// return to the backlog.
func (s *SQLStore) DeleteSprints(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := clearSprints(ctx, tx, userID); err != nil {
		return err
	}
	return tx.Commit()
}
