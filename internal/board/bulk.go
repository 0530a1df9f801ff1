package board

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc/pool"

	"github.com/nhle/brainmint/internal/model"
)

// maxBulkConcurrency caps the number of simultaneous calls of one bulk
// operation.
const maxBulkConcurrency = 8

// BulkResultMsg is delivered once every call of a bulk operation has
// settled.
type BulkResultMsg struct {
	Owner  string
	Kind   MutationKind
	IDs    []string
	Failed int
	Err    error
}

// Select adds a task to the selection.
func (c *Coordinator) Select(id string) {
	if c.IsSelected(id) {
		return
	}
	if _, err := c.coll.FindByID(id); err == nil {
		c.selection = append(c.selection, id)
	}
}

// Toggle flips a task's membership in the selection.
func (c *Coordinator) Toggle(id string) {
	if i := slices.Index(c.selection, id); i >= 0 {
		c.selection = slices.Delete(c.selection, i, i+1)
		return
	}
	c.Select(id)
}

// IsSelected reports whether id is selected.
func (c *Coordinator) IsSelected(id string) bool {
	return slices.Contains(c.selection, id)
}

// Selected returns the selected ids in selection order.
func (c *Coordinator) Selected() []string {
	return slices.Clone(c.selection)
}

// ClearSelection empties the selection.
func (c *Coordinator) ClearSelection() { c.selection = nil }

// unselect drops id from the selection.
func (c *Coordinator) unselect(id string) {
	c.selection = slices.DeleteFunc(c.selection, func(s string) bool { return s == id })
}

// BulkArchive archives every id optimistically and fires the calls
// concurrently.
func (c *Coordinator) BulkArchive(ids []string) (tea.Cmd, error) {
	var applied []string
	for _, id := range ids {
		if _, err := c.coll.Remove(id); err != nil {
			continue
		}
		applied = append(applied, id)
	}

	store := c.store
	return c.fanOut(KindBulkArchive, applied, func(ctx context.Context, id string) error {
		return store.ArchiveTask(ctx, id)
	}), nil
}

// BulkDelete deletes every id optimistically and fires the calls
// concurrently.
func (c *Coordinator) BulkDelete(ids []string) (tea.Cmd, error) {
	var applied []string
	for _, id := range ids {
		if _, err := c.coll.Remove(id); err != nil {
			continue
		}
		applied = append(applied, id)
	}

	store := c.store
	return c.fanOut(KindBulkDelete, applied, func(ctx context.Context, id string) error {
		return store.DeleteTask(ctx, id)
	}), nil
}

// BulkMoveToSprint assigns every id to sprintID (nil for the backlog).
func (c *Coordinator) BulkMoveToSprint(ids []string, sprintID *int64) (tea.Cmd, error) {
	name, err := c.resolveSprint(sprintID)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, id := range ids {
		t, err := c.coll.FindByID(id)
		if err != nil {
			continue
		}
		assign(&t, sprintID, name)
		c.coll.Upsert(t)
		applied = append(applied, id)
	}

	var target *int64
	if sprintID != nil {
		v := *sprintID
		target = &v
	}
	store := c.store
	return c.fanOut(KindBulkMove, applied, func(ctx context.Context, id string) error {
		_, err := store.AssignSprint(ctx, id, target)
		return err
	}), nil
}

// fanOut marks ids Applying and returns a command that runs call for
// each of them concurrently. The selection is kept until the result is
// handled. With nothing applied the selection is cleared at once.
func (c *Coordinator) fanOut(kind MutationKind, ids []string, call func(ctx context.Context, id string) error) tea.Cmd {
	if len(ids) == 0 {
		c.ClearSelection()
		return nil
	}

	for _, id := range ids {
		c.track(id)
	}
	c.inFlight++
	c.logger.Debug("bulk mutation applied locally",
		slog.String("kind", string(kind)),
		slog.Int("count", len(ids)),
	)

	owner, timeout := c.id, c.opts.timeout
	ids = slices.Clone(ids)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var failed atomic.Int32
		p := pool.New().WithErrors().WithMaxGoroutines(maxBulkConcurrency)
		for _, id := range ids {
			p.Go(func() error {
				if err := call(ctx, id); err != nil {
					failed.Add(1)
					return err
				}
				return nil
			})
		}
		err := p.Wait()

		return BulkResultMsg{
			Owner:  owner,
			Kind:   kind,
			IDs:    ids,
			Failed: int(failed.Load()),
			Err:    err,
		}
	}
}

func (c *Coordinator) handleBulk(msg BulkResultMsg) tea.Cmd {
	c.settle()
	c.ClearSelection()

	for _, id := range msg.IDs {
		c.untrack(id, msg.Err != nil)
	}

	if msg.Err == nil {
		c.logger.Debug("bulk mutation confirmed",
			slog.String("kind", string(msg.Kind)),
			slog.Int("count", len(msg.IDs)),
		)
		return nil
	}

	c.logger.Warn("bulk mutation failed",
		slog.String("kind", string(msg.Kind)),
		slog.Int("failed", msg.Failed),
		slog.Int("count", len(msg.IDs)),
		slog.String("error", msg.Err.Error()),
	)
	c.notify(Notice{
		Level:   levelFor(msg.Kind),
		Kind:    msg.Kind,
		Message: failureMessage(msg.Kind, msg.Err),
		Err:     msg.Err,
	})
	return c.Reload()
}

// SelectedTasks returns the selected tasks still on the board, in
// selection order.
func (c *Coordinator) SelectedTasks() []model.Task {
	out := make([]model.Task, 0, len(c.selection))
	for _, id := range c.Selected() {
		if t, err := c.coll.FindByID(id); err == nil {
			out = append(out, t)
		}
	}
	return out
}
