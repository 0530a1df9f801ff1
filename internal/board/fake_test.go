package board

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/brainmint/internal/model"
)

// fakeStore is an in-memory remote store with failure injection. It
// applies mutations the way the backend does so reloads return the
// authoritative state.
type fakeStore struct {
	mu sync.Mutex

	tasks    []model.Task
	archived []model.ArchivedTask
	board    model.SprintBoard
	nextID   int

	// failIDs makes every mutation of the listed tasks fail with 500.
	failIDs map[string]bool
	// failOps makes the named operation fail with 500.
	failOps map[string]bool
	// noEcho makes CreateTask return no task.
	noEcho bool

	calls []string
}

var _ TaskStore = (*fakeStore)(nil)
var _ ArchiveStore = (*fakeStore)(nil)

func newFakeStore(tasks ...model.Task) *fakeStore {
	f := &fakeStore{
		failIDs: make(map[string]bool),
		failOps: make(map[string]bool),
		nextID:  100,
	}
	for _, t := range tasks {
		t.Normalize()
		f.tasks = append(f.tasks, t)
	}
	return f
}

func serverError(op string) error {
	return &model.NetworkError{Op: op, StatusCode: 500, Message: "boom"}
}

func (f *fakeStore) record(op, id string) error {
	f.calls = append(f.calls, op+" "+id)
	if f.failOps[op] || (id != "" && f.failIDs[id]) {
		return serverError(op)
	}
	return nil
}

func (f *fakeStore) find(id string) (int, error) {
	i := slices.IndexFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
	if i < 0 {
		return -1, &model.NetworkError{Op: "lookup", StatusCode: 404, Message: "Task not found"}
	}
	return i, nil
}

func (f *fakeStore) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(op) && c[:len(op)] == op {
			n++
		}
	}
	return n
}

func (f *fakeStore) snapshot() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

func (f *fakeStore) GetTasks(_ context.Context, _ int64) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTasks", ""); err != nil {
		return nil, err
	}
	return slices.Clone(f.tasks), nil
}

func (f *fakeStore) GetSprints(_ context.Context, _ int64) (*model.SprintBoard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSprints", ""); err != nil {
		return nil, err
	}
	b := f.board
	b.Sprints = slices.Clone(f.board.Sprints)
	return &b, nil
}

func (f *fakeStore) CreateTask(_ context.Context, d model.TaskDraft) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTask", ""); err != nil {
		return nil, err
	}
	f.nextID++
	t := model.Task{
		ID:       strconv.Itoa(f.nextID),
		Title:    d.Title,
		Priority: d.Priority,
		Status:   d.Status,
		DueDate:  d.DueDate,
		Subtasks: model.Subtasks{Total: d.SubtasksTotal},
		SprintID: d.SprintID,
	}
	t.Normalize()
	f.tasks = append(f.tasks, t)
	if f.noEcho {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) mutate(op, id string, fn func(t *model.Task)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(op, id); err != nil {
		return err
	}
	i, err := f.find(id)
	if err != nil {
		return err
	}
	fn(&f.tasks[i])
	f.tasks[i].Normalize()
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, st model.Status) error {
	return f.mutate("UpdateStatus", id, func(t *model.Task) { applyStatus(t, st) })
}

func (f *fakeStore) UpdatePriority(_ context.Context, id string, p model.Priority) error {
	return f.mutate("UpdatePriority", id, func(t *model.Task) { t.Priority = p })
}

func (f *fakeStore) IncrementSubtask(_ context.Context, id string, completed int) (bool, error) {
	err := f.mutate("IncrementSubtask", id, func(t *model.Task) { t.Subtasks.Completed = completed })
	return false, err
}

func (f *fakeStore) AssignSprint(_ context.Context, id string, sprintID *int64) (string, error) {
	var name string
	err := f.mutate("AssignSprint", id, func(t *model.Task) {
		if sprintID == nil {
			t.SprintID, t.SprintName = nil, ""
			return
		}
		for _, s := range f.board.Sprints {
			if s.ID == *sprintID {
				name = s.Title
			}
		}
		v := *sprintID
		t.SprintID, t.SprintName = &v, name
	})
	return name, err
}

func (f *fakeStore) UpdateDueDate(_ context.Context, id string, due time.Time) error {
	return f.mutate("UpdateDueDate", id, func(t *model.Task) { t.DueDate = &due })
}

func (f *fakeStore) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteTask", id); err != nil {
		return err
	}
	if i, err := f.find(id); err == nil {
		f.tasks = slices.Delete(f.tasks, i, i+1)
		return nil
	}
	i := slices.IndexFunc(f.archived, func(a model.ArchivedTask) bool { return a.ID == id })
	if i < 0 {
		return &model.NetworkError{Op: "DeleteTask", StatusCode: 404}
	}
	f.archived = slices.Delete(f.archived, i, i+1)
	return nil
}

func (f *fakeStore) ArchiveTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ArchiveTask", id); err != nil {
		return err
	}
	i, err := f.find(id)
	if err != nil {
		return err
	}
	t := f.tasks[i]
	prev := t.Status
	t.Status = model.StatusArchived
	f.archived = append(f.archived, model.ArchivedTask{Task: t, PreviousStatus: prev})
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

func (f *fakeStore) GetArchived(_ context.Context, _ int64) ([]model.ArchivedTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetArchived", ""); err != nil {
		return nil, err
	}
	return slices.Clone(f.archived), nil
}

func (f *fakeStore) UnarchiveTask(_ context.Context, id string) (model.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UnarchiveTask", id); err != nil {
		return "", err
	}
	i := slices.IndexFunc(f.archived, func(a model.ArchivedTask) bool { return a.ID == id })
	if i < 0 {
		return "", &model.NetworkError{Op: "UnarchiveTask", StatusCode: 404}
	}
	a := f.archived[i]
	f.archived = slices.Delete(f.archived, i, i+1)
	t := a.Task
	t.Status = a.RestoreStatus()
	f.tasks = append(f.tasks, t)
	return t.Status, nil
}

func (f *fakeStore) CreateSprints(_ context.Context, plan model.SprintPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateSprints", ""); err != nil {
		return err
	}
	f.board = model.SprintBoard{ProjectTitle: plan.ProjectTitle}
	for i, s := range plan.Sprints {
		start, end := s.StartDate, s.EndDate
		f.board.Sprints = append(f.board.Sprints, model.Sprint{
			ID:        int64(i + 1),
			Title:     s.Title,
			StartDate: &start,
			EndDate:   &end,
		})
	}
	return nil
}

func (f *fakeStore) DeleteSprints(_ context.Context, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteSprints", ""); err != nil {
		return err
	}
	f.board.Sprints = nil
	f.board.Current = nil
	for i := range f.tasks {
		f.tasks[i].SprintID = nil
		f.tasks[i].SprintName = ""
	}
	return nil
}

// tb is the subset of testing.TB that rapid.T also provides.
type tb interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
}

// handler is anything that consumes its own messages.
type handler interface {
	Handle(msg tea.Msg) (tea.Cmd, bool)
}

// drain runs cmd and every follow-up command it produces, feeding each
// message back into h. It returns the messages in delivery order.
func drain(t tb, h handler, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	for i := 0; cmd != nil; i++ {
		if i > 20 {
			t.Fatal("command chain did not settle")
		}
		msg := cmd()
		msgs = append(msgs, msg)
		next, ok := h.Handle(msg)
		if !ok {
			t.Fatalf("message %T not handled", msg)
		}
		cmd = next
	}
	return msgs
}

// loadedCoordinator returns a coordinator whose first snapshot of f has
// been applied.
func loadedCoordinator(t tb, f *fakeStore) *Coordinator {
	t.Helper()
	c := NewCoordinator(f, 1)
	drain(t, c, c.Init())
	if !c.Loaded() {
		t.Fatalf("initial load failed: %v", c.LoadErr())
	}
	return c
}

func ptr[T any](v T) *T { return &v }

func task(id string, status model.Status, done, total int) model.Task {
	return model.Task{
		ID:       id,
		Title:    fmt.Sprintf("Task %s", id),
		Priority: model.PriorityMedium,
		Status:   status,
		Subtasks: model.Subtasks{Completed: done, Total: total},
	}
}

// sameTasks compares task lists, treating nil and empty as equal.
func sameTasks(a, b []model.Task) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
