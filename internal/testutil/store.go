package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t testing.TB) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedSprints replaces the user's sprints with consecutive two-week
// sprints starting at start and returns the resulting board.
func SeedSprints(t testing.TB, s store.Store, userID int64, start time.Time, titles ...string) *model.SprintBoard {
	t.Helper()

	plan := model.SprintPlan{UserID: userID, ProjectTitle: "Test Project"}
	for i, title := range titles {
		from := start.AddDate(0, 0, 14*i)
		plan.Sprints = append(plan.Sprints, model.SprintSpec{
			Title:     title,
			StartDate: from,
			EndDate:   from.AddDate(0, 0, 13),
		})
	}

	ctx := context.Background()
	if err := s.ReplaceSprints(ctx, plan); err != nil {
		t.Fatalf("seeding sprints: %v", err)
	}
	board, err := s.ListSprints(ctx, userID, start)
	if err != nil {
		t.Fatalf("listing seeded sprints: %v", err)
	}
	return board
}

// SeedTask inserts a task for the user and fails the test on error.
func SeedTask(t testing.TB, s store.Store, draft model.TaskDraft) model.Task {
	t.Helper()

	task, err := s.CreateTask(context.Background(), draft)
	if err != nil {
		t.Fatalf("seeding task %q: %v", draft.Title, err)
	}
	return task
}
