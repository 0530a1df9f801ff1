package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/remote"
)

// Deps are the collaborators every page is built from. Each page owns
// its own coordinator over the shared Store.
type Deps struct {
	Store    remote.Store
	UserID   int64
	Keys     *keys.KeyMap
	Logger   *slog.Logger
	Now      func() time.Time
	Debounce time.Duration
	PageSize int
}

// Today returns the current calendar day.
func (d Deps) Today() time.Time {
	if d.Now == nil {
		return model.Day(time.Now())
	}
	return model.Day(d.Now())
}

// Page is one tab of the dashboard.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)

	// Reload refetches the page's data from the server.
	Reload() tea.Cmd

	// Leave is called when the tab loses focus.
	Leave()

	// Capturing reports whether the page owns the keyboard, as when a
	// search box is focused.
	Capturing() bool

	Busy() bool
	TakeNotice() (board.Notice, bool)
	Hints() string
}

// TaskPage is a page whose tasks can be created, deleted and bulk
// edited through dialogs owned by the app.
type TaskPage interface {
	Page
	Coordinator() *board.Coordinator
	Focused() (model.Task, bool)
}

// Notices queues notices raised by a page itself, such as a rejected
// mutation, ahead of its coordinator's.
type Notices struct {
	queue []board.Notice
}

// Fail queues err as a toast unless it is nil.
func (n *Notices) Fail(kind board.MutationKind, err error) {
	if err == nil {
		return
	}
	n.queue = append(n.queue, board.Notice{
		Level:   board.Toast,
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	})
}

// Take pops the oldest queued notice, falling back to next.
func (n *Notices) Take(next func() (board.Notice, bool)) (board.Notice, bool) {
	if len(n.queue) > 0 {
		first := n.queue[0]
		n.queue = n.queue[1:]
		return first, true
	}
	if next == nil {
		return board.Notice{}, false
	}
	return next()
}
