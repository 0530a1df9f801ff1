package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/brainmint/internal/model"
)

// defaultTimeout bounds a single network round trip issued by a page.
const defaultTimeout = 30 * time.Second

// MutationState is the per-entity position in the optimistic update
// cycle. Confirmed collapses straight back to Idle.
type MutationState int

const (
	Idle MutationState = iota
	Applying
	Reconciling
)

func (s MutationState) String() string {
	switch s {
	case Applying:
		return "applying"
	case Reconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// MutationKind names a mutation for logging and notices.
type MutationKind string

const (
	KindCreate       MutationKind = "create"
	KindStatus       MutationKind = "status"
	KindMove         MutationKind = "move"
	KindSubtask      MutationKind = "subtask"
	KindPriority     MutationKind = "priority"
	KindSprint       MutationKind = "sprint"
	KindDueDate      MutationKind = "due-date"
	KindDelete       MutationKind = "delete"
	KindArchive      MutationKind = "archive"
	KindBulkArchive  MutationKind = "bulk-archive"
	KindBulkDelete   MutationKind = "bulk-delete"
	KindBulkMove     MutationKind = "bulk-move"
	KindSetupSprints MutationKind = "setup-sprints"
	KindReset        MutationKind = "reset"
	KindUnarchive    MutationKind = "unarchive"
	KindLoad         MutationKind = "load"
)

// NoticeLevel controls how a failure is surfaced.
type NoticeLevel int

const (
	// Silent failures only reload; the board heals without interrupting.
	Silent NoticeLevel = iota
	// Toast is a transient, non-blocking status line message.
	Toast
	// Blocking needs the user to dismiss it.
	Blocking
)

// levelFor maps a mutation to the way its failure is reported.
func levelFor(kind MutationKind) NoticeLevel {
	switch kind {
	case KindMove, KindSubtask:
		return Silent
	case KindCreate, KindDelete, KindBulkArchive, KindBulkDelete,
		KindBulkMove, KindSetupSprints, KindReset:
		return Blocking
	default:
		return Toast
	}
}

// Notice is a user-facing report of a mutation outcome.
type Notice struct {
	Level   NoticeLevel
	Kind    MutationKind
	Message string
	Err     error
}

// MutationResultMsg is delivered when a single-task network call settles.
type MutationResultMsg struct {
	Owner  string
	Kind   MutationKind
	TaskID string
	Err    error

	// Task is the server echo of a created task, if any.
	Task *model.Task
}

// LoadedMsg carries a full snapshot fetched by Reload.
type LoadedMsg struct {
	Owner      string
	Seq        uint64
	Collection *Collection
	Err        error
}

// Option configures a Coordinator or ArchiveShelf.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTimeout bounds each network call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Coordinator owns one page's Collection and applies every mutation to
// it optimistically. It is driven from the Bubble Tea update loop and
// must not be shared between pages or goroutines.
type Coordinator struct {
	id     string
	store  TaskStore
	userID int64
	opts   options
	logger *slog.Logger

	coll    *Collection
	loaded  bool
	loadErr error

	seq     uint64
	applied uint64

	states    map[string]MutationState
	selection []string
	notices   []Notice
	inFlight  int

	// pending counts the outstanding calls per task id. A task is only
	// Idle once its count drops to zero.
	pending map[string]int
}

// NewCoordinator creates a coordinator with an empty collection. Call
// Reload (or Init) to fetch the first snapshot.
func NewCoordinator(store TaskStore, userID int64, opts ...Option) *Coordinator {
	o := buildOptions(opts)
	id := uuid.NewString()
	return &Coordinator{
		id:      id,
		store:   store,
		userID:  userID,
		opts:    o,
		logger:  o.logger.With(slog.String("board", id[:8])),
		coll:    NewCollection(nil, nil),
		states:  make(map[string]MutationState),
		pending: make(map[string]int),
	}
}

// Init loads the first snapshot.
func (c *Coordinator) Init() tea.Cmd { return c.Reload() }

// ID identifies the coordinator in the messages it produces.
func (c *Coordinator) ID() string { return c.id }

// UserID returns the user the board belongs to.
func (c *Coordinator) UserID() int64 { return c.userID }

// Collection returns the current snapshot. It is replaced wholesale on
// every reload, so callers must not hold on to it.
func (c *Coordinator) Collection() *Collection { return c.coll }

// Loaded reports whether at least one snapshot has been applied.
func (c *Coordinator) Loaded() bool { return c.loaded }

// LoadErr returns the error of the last failed load, if any.
func (c *Coordinator) LoadErr() error { return c.loadErr }

// Busy reports whether any network call is still outstanding.
func (c *Coordinator) Busy() bool { return c.inFlight > 0 }

// State returns the mutation state of a task.
func (c *Coordinator) State(id string) MutationState { return c.states[id] }

// Notices returns the undelivered notices, oldest first.
func (c *Coordinator) Notices() []Notice { return append([]Notice(nil), c.notices...) }

// TakeNotice pops the oldest undelivered notice.
func (c *Coordinator) TakeNotice() (Notice, bool) {
	if len(c.notices) == 0 {
		return Notice{}, false
	}
	n := c.notices[0]
	c.notices = c.notices[1:]
	return n, true
}

func (c *Coordinator) notify(n Notice) {
	c.notices = append(c.notices, n)
}

// Reload issues a full fetch. Snapshots older than the last applied one
// are discarded when they arrive.
func (c *Coordinator) Reload() tea.Cmd {
	c.seq++
	seq := c.seq
	c.inFlight++
	store, userID, owner, logger, timeout := c.store, c.userID, c.id, c.logger, c.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		coll, err := load(ctx, store, userID, logger)
		return LoadedMsg{Owner: owner, Seq: seq, Collection: coll, Err: err}
	}
}

// lookup returns the task or reports a silent no-op for unknown ids.
func (c *Coordinator) lookup(kind MutationKind, id string) (model.Task, bool) {
	t, err := c.coll.FindByID(id)
	if err != nil {
		c.logger.Debug("mutation on unknown task ignored",
			slog.String("kind", string(kind)),
			slog.String("task_id", id),
		)
		return model.Task{}, false
	}
	return t, true
}

// begin marks id as Applying and wraps call into a tea.Cmd producing a
// MutationResultMsg.
func (c *Coordinator) begin(kind MutationKind, id string, call func(ctx context.Context) error) tea.Cmd {
	c.track(id)
	c.inFlight++
	c.logger.Debug("mutation applied locally",
		slog.String("kind", string(kind)),
		slog.String("task_id", id),
	)
	owner, timeout := c.id, c.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return MutationResultMsg{Owner: owner, Kind: kind, TaskID: id, Err: call(ctx)}
	}
}

// track records one more outstanding call on id.
func (c *Coordinator) track(id string) {
	if id == "" {
		return
	}
	c.pending[id]++
	c.states[id] = Applying
}

// untrack settles one call on id. A failure leaves the task
// Reconciling until the next snapshot; a success returns it to Idle
// once no other call on it is outstanding.
func (c *Coordinator) untrack(id string, failed bool) {
	if id == "" {
		return
	}
	if n := c.pending[id]; n > 1 {
		c.pending[id] = n - 1
	} else {
		delete(c.pending, id)
	}
	switch {
	case failed:
		c.states[id] = Reconciling
	case c.pending[id] == 0 && c.states[id] == Applying:
		delete(c.states, id)
	}
}

// applyStatus sets the column. Moving into done completes every
// subtask and pins progress at 100.
func applyStatus(t *model.Task, status model.Status) {
	t.Status = status
	if status == model.StatusDone {
		t.Subtasks.Completed = t.Subtasks.Total
		t.Progress = 100
	}
}

// CreateTask validates the draft and posts it. Nothing is appended
// until the server echoes the created record; without an echo the
// board reloads.
func (c *Coordinator) CreateTask(draft model.TaskDraft) (tea.Cmd, error) {
	if draft.UserID == 0 {
		draft.UserID = c.userID
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	c.inFlight++
	store, owner, timeout := c.store, c.id, c.opts.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		task, err := store.CreateTask(ctx, draft)
		return MutationResultMsg{Owner: owner, Kind: KindCreate, Task: task, Err: err}
	}, nil
}

// UpdateStatus moves a task to another column.
func (c *Coordinator) UpdateStatus(id string, status model.Status) (tea.Cmd, error) {
	return c.updateStatus(KindStatus, id, status)
}

// MoveTask is UpdateStatus for drag and drop: failures reload silently.
func (c *Coordinator) MoveTask(id string, status model.Status) (tea.Cmd, error) {
	return c.updateStatus(KindMove, id, status)
}

func (c *Coordinator) updateStatus(kind MutationKind, id string, status model.Status) (tea.Cmd, error) {
	if !status.Valid() {
		return nil, &model.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("invalid status %q", status),
		}
	}
	t, ok := c.lookup(kind, id)
	if !ok {
		return nil, nil
	}

	applyStatus(&t, status)
	c.coll.Upsert(t)

	store := c.store
	return c.begin(kind, id, func(ctx context.Context) error {
		return store.UpdateStatus(ctx, id, status)
	}), nil
}

// IncrementSubtask completes one more subtask. Completing the last one
// also moves the task to done.
func (c *Coordinator) IncrementSubtask(id string) (tea.Cmd, error) {
	t, ok := c.lookup(KindSubtask, id)
	if !ok {
		return nil, nil
	}
	if t.Subtasks.Completed >= t.Subtasks.Total {
		return nil, &model.ValidationError{
			Field:   "subtasks",
			Message: "all subtasks are already complete",
		}
	}

	completed := min(t.Subtasks.Completed+1, t.Subtasks.Total)
	t.Subtasks.Completed = completed
	finished := completed == t.Subtasks.Total
	if finished {
		applyStatus(&t, model.StatusDone)
	}
	c.coll.Upsert(t)

	store := c.store
	return c.begin(KindSubtask, id, func(ctx context.Context) error {
		autoCompleted, err := store.IncrementSubtask(ctx, id, completed)
		if err != nil {
			return err
		}
		if finished && !autoCompleted {
			return store.UpdateStatus(ctx, id, model.StatusDone)
		}
		return nil
	}), nil
}

// UpdatePriority changes a task's priority.
func (c *Coordinator) UpdatePriority(id string, priority model.Priority) (tea.Cmd, error) {
	if !priority.Valid() {
		return nil, &model.ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("invalid priority %q", priority),
		}
	}
	t, ok := c.lookup(KindPriority, id)
	if !ok {
		return nil, nil
	}

	t.Priority = priority
	c.coll.Upsert(t)

	store := c.store
	return c.begin(KindPriority, id, func(ctx context.Context) error {
		return store.UpdatePriority(ctx, id, priority)
	}), nil
}

// resolveSprint validates a sprint reference against the local sprint
// list and returns its display name.
func (c *Coordinator) resolveSprint(sprintID *int64) (string, error) {
	if sprintID == nil {
		return "", nil
	}
	s, ok := c.coll.Sprint(*sprintID)
	if !ok {
		return "", &model.ValidationError{
			Field:   "sprint_id",
			Message: fmt.Sprintf("unknown sprint %d", *sprintID),
		}
	}
	return s.Title, nil
}

func assign(t *model.Task, sprintID *int64, name string) {
	if sprintID == nil {
		t.SprintID = nil
		t.SprintName = ""
		return
	}
	id := *sprintID
	t.SprintID = &id
	t.SprintName = name
}

// AssignSprint moves a task into a sprint, or to the backlog when
// sprintID is nil. The cached sprint name follows the id.
func (c *Coordinator) AssignSprint(id string, sprintID *int64) (tea.Cmd, error) {
	name, err := c.resolveSprint(sprintID)
	if err != nil {
		return nil, err
	}
	t, ok := c.lookup(KindSprint, id)
	if !ok {
		return nil, nil
	}

	assign(&t, sprintID, name)
	c.coll.Upsert(t)

	store, target := c.store, t.SprintID
	return c.begin(KindSprint, id, func(ctx context.Context) error {
		_, err := store.AssignSprint(ctx, id, target)
		return err
	}), nil
}

// UpdateDueDate reschedules a task to the given calendar day.
func (c *Coordinator) UpdateDueDate(id string, due time.Time) (tea.Cmd, error) {
	if due.IsZero() {
		return nil, &model.ValidationError{Field: "due_date", Message: "a date is required"}
	}
	t, ok := c.lookup(KindDueDate, id)
	if !ok {
		return nil, nil
	}

	day := model.Day(due)
	t.DueDate = &day
	c.coll.Upsert(t)

	store := c.store
	return c.begin(KindDueDate, id, func(ctx context.Context) error {
		return store.UpdateDueDate(ctx, id, day)
	}), nil
}

// DeleteTask removes a task permanently.
func (c *Coordinator) DeleteTask(id string) (tea.Cmd, error) {
	if _, err := c.coll.Remove(id); err != nil {
		return nil, nil
	}
	c.unselect(id)

	store := c.store
	return c.begin(KindDelete, id, func(ctx context.Context) error {
		return store.DeleteTask(ctx, id)
	}), nil
}

// ArchiveTask removes a task from the board. The server keeps the
// column it left, so the Archived page can restore it.
func (c *Coordinator) ArchiveTask(id string) (tea.Cmd, error) {
	t, err := c.coll.Remove(id)
	if err != nil {
		return nil, nil
	}
	c.unselect(id)
	c.logger.Debug("task archived locally",
		slog.String("task_id", id),
		slog.String("previous_status", string(t.Status)),
	)

	store := c.store
	return c.begin(KindArchive, id, func(ctx context.Context) error {
		return store.ArchiveTask(ctx, id)
	}), nil
}

// SetupSprints replaces the user's sprints with plan and reloads.
func (c *Coordinator) SetupSprints(plan model.SprintPlan) (tea.Cmd, error) {
	if plan.UserID == 0 {
		plan.UserID = c.userID
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	store := c.store
	return c.begin(KindSetupSprints, "", func(ctx context.Context) error {
		return store.CreateSprints(ctx, plan)
	}), nil
}

// ResetProject deletes every sprint. Member tasks stay and return to
// the backlog.
func (c *Coordinator) ResetProject() tea.Cmd {
	c.coll.orphanAll()

	store, userID := c.store, c.userID
	return c.begin(KindReset, "", func(ctx context.Context) error {
		return store.DeleteSprints(ctx, userID)
	})
}

// Handle consumes the messages produced by this coordinator's
// commands. It reports false for messages it does not own.
func (c *Coordinator) Handle(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case MutationResultMsg:
		if msg.Owner != c.id {
			return nil, false
		}
		return c.handleResult(msg), true

	case BulkResultMsg:
		if msg.Owner != c.id {
			return nil, false
		}
		return c.handleBulk(msg), true

	case LoadedMsg:
		if msg.Owner != c.id {
			return nil, false
		}
		c.handleLoaded(msg)
		return nil, true
	}
	return nil, false
}

func (c *Coordinator) settle() {
	if c.inFlight > 0 {
		c.inFlight--
	}
}

func (c *Coordinator) handleResult(msg MutationResultMsg) tea.Cmd {
	c.settle()

	if msg.Kind != KindCreate {
		c.untrack(msg.TaskID, msg.Err != nil)
	}

	if msg.Err == nil {
		c.logger.Debug("mutation confirmed",
			slog.String("kind", string(msg.Kind)),
			slog.String("task_id", msg.TaskID),
		)
		switch msg.Kind {
		case KindCreate:
			if msg.Task == nil {
				return c.Reload()
			}
			c.coll.Upsert(*msg.Task)
			return nil
		case KindSetupSprints, KindReset:
			return c.Reload()
		}
		return nil
	}

	c.logger.Warn("mutation failed",
		slog.String("kind", string(msg.Kind)),
		slog.String("task_id", msg.TaskID),
		slog.String("error", msg.Err.Error()),
	)
	c.notify(Notice{
		Level:   levelFor(msg.Kind),
		Kind:    msg.Kind,
		Message: failureMessage(msg.Kind, msg.Err),
		Err:     msg.Err,
	})

	// A failed create never touched the collection; the form stays open.
	if msg.Kind == KindCreate {
		return nil
	}
	return c.Reload()
}

func (c *Coordinator) handleLoaded(msg LoadedMsg) {
	c.settle()

	if msg.Seq <= c.applied {
		c.logger.Debug("stale snapshot dropped",
			slog.Uint64("seq", msg.Seq),
			slog.Uint64("applied", c.applied),
		)
		return
	}
	c.applied = msg.Seq

	if msg.Err != nil {
		c.loadErr = msg.Err
		c.logger.Warn("load failed", slog.String("error", msg.Err.Error()))
		c.notify(Notice{
			Level:   Toast,
			Kind:    KindLoad,
			Message: failureMessage(KindLoad, msg.Err),
			Err:     msg.Err,
		})
		return
	}

	c.coll = msg.Collection
	c.loaded = true
	c.loadErr = nil
	for id := range c.states {
		if c.pending[id] > 0 {
			c.states[id] = Applying
		} else {
			delete(c.states, id)
		}
	}
	c.selection = slices.DeleteFunc(c.selection, func(id string) bool {
		_, err := c.coll.FindByID(id)
		return err != nil
	})
}

func failureMessage(kind MutationKind, err error) string {
	var verb string
	switch kind {
	case KindCreate:
		verb = "create task"
	case KindDelete, KindBulkDelete:
		verb = "delete"
	case KindArchive, KindBulkArchive:
		verb = "archive"
	case KindBulkMove, KindSprint:
		verb = "move to sprint"
	case KindSetupSprints:
		verb = "save sprints"
	case KindReset:
		verb = "reset project"
	case KindLoad:
		verb = "load tasks"
	case KindUnarchive:
		verb = "restore task"
	default:
		verb = "update task"
	}

	var netErr *model.NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return fmt.Sprintf("Could not %s: %s", verb, netErr.Message)
	}
	return fmt.Sprintf("Could not %s: %v", verb, err)
}
