package board

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/brainmint/internal/model"
)

// ArchiveStore is the part of the remote store the Archived page uses.
type ArchiveStore interface {
	GetArchived(ctx context.Context, userID int64) ([]model.ArchivedTask, error)
	UnarchiveTask(ctx context.Context, taskID string) (model.Status, error)
	DeleteTask(ctx context.Context, taskID string) error
}

// ArchivedLoadedMsg carries the archived shelf fetched by Reload.
type ArchivedLoadedMsg struct {
	Owner string
	Seq   uint64
	Tasks []model.ArchivedTask
	Err   error
}

// ShelfResultMsg is delivered when an unarchive or delete settles.
type ShelfResultMsg struct {
	Owner      string
	Kind       MutationKind
	TaskID     string
	Title      string
	RestoredTo model.Status
	Err        error
}

// ArchiveShelf is the Archived page's counterpart of Coordinator: it
// owns the archived task list and applies restores and deletes
// optimistically, reloading the shelf on failure.
type ArchiveShelf struct {
	id     string
	store  ArchiveStore
	userID int64
	opts   options
	logger *slog.Logger

	tasks   []model.ArchivedTask
	loaded  bool
	seq     uint64
	applied uint64
	pending int
	notices []Notice
}

// NewArchiveShelf creates an empty shelf for userID.
func NewArchiveShelf(store ArchiveStore, userID int64, opts ...Option) *ArchiveShelf {
	o := buildOptions(opts)
	id := uuid.NewString()
	return &ArchiveShelf{
		id:     id,
		store:  store,
		userID: userID,
		opts:   o,
		logger: o.logger.With(slog.String("shelf", id[:8])),
	}
}

// Init loads the shelf.
func (s *ArchiveShelf) Init() tea.Cmd { return s.Reload() }

// Tasks returns the archived tasks in server order.
func (s *ArchiveShelf) Tasks() []model.ArchivedTask { return slices.Clone(s.tasks) }

// Busy reports whether a restore or delete is in flight.
func (s *ArchiveShelf) Busy() bool { return s.pending > 0 }

// Loaded reports whether the shelf has been fetched at least once.
func (s *ArchiveShelf) Loaded() bool { return s.loaded }

// TakeNotice pops the oldest undelivered notice.
func (s *ArchiveShelf) TakeNotice() (Notice, bool) {
	if len(s.notices) == 0 {
		return Notice{}, false
	}
	n := s.notices[0]
	s.notices = s.notices[1:]
	return n, true
}

// Reload fetches the shelf. Out-of-order results are dropped.
func (s *ArchiveShelf) Reload() tea.Cmd {
	s.seq++
	seq := s.seq
	store, userID, owner, timeout := s.store, s.userID, s.id, s.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := store.GetArchived(ctx, userID)
		return ArchivedLoadedMsg{Owner: owner, Seq: seq, Tasks: tasks, Err: err}
	}
}

func (s *ArchiveShelf) remove(id string) (model.ArchivedTask, bool) {
	i := slices.IndexFunc(s.tasks, func(t model.ArchivedTask) bool { return t.ID == id })
	if i < 0 {
		return model.ArchivedTask{}, false
	}
	t := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return t, true
}

// Unarchive restores a task to its previous column. Unknown ids are a
// silent no-op.
func (s *ArchiveShelf) Unarchive(id string) tea.Cmd {
	t, ok := s.remove(id)
	if !ok {
		return nil
	}
	s.pending++

	store, owner, timeout := s.store, s.id, s.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		restored, err := store.UnarchiveTask(ctx, id)
		return ShelfResultMsg{
			Owner:      owner,
			Kind:       KindUnarchive,
			TaskID:     id,
			Title:      t.Title,
			RestoredTo: restored,
			Err:        err,
		}
	}
}

// DeleteArchived permanently removes an archived task.
func (s *ArchiveShelf) DeleteArchived(id string) tea.Cmd {
	t, ok := s.remove(id)
	if !ok {
		return nil
	}
	s.pending++

	store, owner, timeout := s.store, s.id, s.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ShelfResultMsg{
			Owner:  owner,
			Kind:   KindDelete,
			TaskID: id,
			Title:  t.Title,
			Err:    store.DeleteTask(ctx, id),
		}
	}
}

// Handle consumes the shelf's own messages.
func (s *ArchiveShelf) Handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ArchivedLoadedMsg:
		if msg.Owner != s.id {
			return nil, false
		}
		if msg.Seq <= s.applied {
			return nil, true
		}
		s.applied = msg.Seq
		if msg.Err != nil {
			s.logger.Warn("archived load failed", slog.String("error", msg.Err.Error()))
			s.notices = append(s.notices, Notice{
				Level:   Toast,
				Kind:    KindLoad,
				Message: failureMessage(KindLoad, msg.Err),
				Err:     msg.Err,
			})
			return nil, true
		}
		s.tasks = msg.Tasks
		s.loaded = true
		return nil, true

	case ShelfResultMsg:
		if msg.Owner != s.id {
			return nil, false
		}
		s.pending = max(s.pending-1, 0)
		if msg.Err != nil {
			s.logger.Warn("archived mutation failed",
				slog.String("kind", string(msg.Kind)),
				slog.String("task_id", msg.TaskID),
				slog.String("error", msg.Err.Error()),
			)
			s.notices = append(s.notices, Notice{
				Level:   Blocking,
				Kind:    msg.Kind,
				Message: failureMessage(msg.Kind, msg.Err),
				Err:     msg.Err,
			})
			return s.Reload(), true
		}
		if msg.Kind == KindUnarchive {
			s.notices = append(s.notices, Notice{
				Level:   Toast,
				Kind:    msg.Kind,
				Message: fmt.Sprintf("Restored %q to %s", msg.Title, msg.RestoredTo.Label()),
			})
		}
		return nil, true
	}
	return nil, false
}
