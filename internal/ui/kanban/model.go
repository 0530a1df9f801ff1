// Package kanban is the Board tab: the four status columns with
// keyboard drag and drop.
package kanban

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
	"github.com/nhle/brainmint/internal/view"
)

// Model is the Board page.
type Model struct {
	deps    ui.Deps
	coord   *board.Coordinator
	adapter *board.Adapter
	notices ui.Notices

	col    int
	rows   [4]int
	width  int
	height int
}

var _ ui.TaskPage = (*Model)(nil)

// New creates the Board page with its own coordinator.
func New(deps ui.Deps) *Model {
	c := board.NewCoordinator(deps.Store, deps.UserID, board.WithLogger(deps.Logger))
	return &Model{
		deps:    deps,
		coord:   c,
		adapter: board.NewAdapter(c),
	}
}

func (m *Model) Init() tea.Cmd                    { return m.coord.Init() }
func (m *Model) Reload() tea.Cmd                  { return m.coord.Reload() }
func (m *Model) Leave()                           { m.adapter.CancelDrag() }
func (m *Model) Capturing() bool                  { return false }
func (m *Model) Busy() bool                       { return m.coord.Busy() }
func (m *Model) Coordinator() *board.Coordinator  { return m.coord }
func (m *Model) TakeNotice() (board.Notice, bool) { return m.notices.Take(m.coord.TakeNotice) }

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Hints returns the status bar shortcuts.
func (m *Model) Hints() string {
	if ev, ok := m.adapter.Dragging(); ok {
		return fmt.Sprintf("moving to %s · h/l choose column · enter drop · esc cancel", ev.To.Label())
	}
	return "h/l column · j/k card · m move · >/< status · p priority · + subtask · a sprint · x archive · n new · ? help"
}

func (m *Model) columns() view.Columns {
	return view.GroupByStatus(m.coord.Collection().Tasks())
}

// Focused returns the card under the cursor.
func (m *Model) Focused() (model.Task, bool) {
	tasks := m.columns().Get(model.BoardStatuses[m.col])
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	row := max(min(m.rows[m.col], len(tasks)-1), 0)
	return tasks[row], true
}

// Update handles keys and coordinator messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.coord.Handle(msg); ok {
		m.clampRows()
		return cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	return m.handleKey(keyMsg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	km := m.deps.Keys

	if ev, dragging := m.adapter.Dragging(); dragging {
		switch {
		case key.Matches(msg, km.Left):
			m.adapter.Hover(ui.ShiftStatus(ev.To, -1))
		case key.Matches(msg, km.Right):
			m.adapter.Hover(ui.ShiftStatus(ev.To, 1))
		case key.Matches(msg, km.Drop), key.Matches(msg, km.Grab):
			cmd, err := m.adapter.Release()
			m.notices.Fail(board.KindMove, err)
			m.col = ev.To.Index()
			m.rows[m.col] = max(len(m.columns().Get(ev.To))-1, 0)
			return cmd
		case key.Matches(msg, km.Back):
			m.adapter.CancelDrag()
		}
		return nil
	}

	switch {
	case key.Matches(msg, km.Left):
		m.col = max(m.col-1, 0)
		return nil
	case key.Matches(msg, km.Right):
		m.col = min(m.col+1, len(model.BoardStatuses)-1)
		return nil
	case key.Matches(msg, km.Up):
		m.rows[m.col] = max(m.rows[m.col]-1, 0)
		return nil
	case key.Matches(msg, km.Down):
		n := len(m.columns().Get(model.BoardStatuses[m.col]))
		m.rows[m.col] = min(m.rows[m.col]+1, max(n-1, 0))
		return nil
	case key.Matches(msg, km.Back):
		m.coord.ClearSelection()
		return nil
	}

	var focused *model.Task
	if t, ok := m.Focused(); ok {
		focused = &t
	}
	if cmd, kind, handled, err := ui.HandleBulkKey(km, m.coord, focused, msg); handled {
		m.notices.Fail(kind, err)
		return cmd
	}

	t, ok := m.Focused()
	if !ok {
		return nil
	}
	if key.Matches(msg, km.Grab) {
		m.adapter.Grab(t.ID, t.Status)
		return nil
	}
	if key.Matches(msg, km.Select) {
		m.adapter.Click(t.ID)
		return nil
	}

	cmd, kind, handled, err := ui.HandleTaskKey(km, m.coord, t, msg, m.deps.Today())
	if !handled {
		return nil
	}
	m.notices.Fail(kind, err)
	m.clampRows()
	return cmd
}

func (m *Model) clampRows() {
	cols := m.columns()
	for i, s := range model.BoardStatuses {
		n := len(cols.Get(s))
		m.rows[i] = max(min(m.rows[i], n-1), 0)
	}
}

// View renders the four columns.
func (m *Model) View() string {
	if !m.coord.Loaded() {
		if err := m.coord.LoadErr(); err != nil {
			return theme.OverdueStyle.Render("Could not load the board: " + err.Error())
		}
		return theme.DimmedStyle.Render("Loading board…")
	}

	coll := m.coord.Collection()
	heading := theme.HeaderStyle.Render(coll.ProjectTitle())
	if cur := coll.CurrentSprint(); cur != nil {
		heading += " " + theme.DimmedStyle.Render("Active: "+cur.Title)
	}
	if sel := len(m.coord.Selected()); sel > 0 {
		heading += " " + theme.DueDateStyle.Render(fmt.Sprintf("%d selected", sel))
	}

	cols := m.columns()
	drag, dragging := m.adapter.Dragging()
	colWidth := max((m.width/len(model.BoardStatuses))-4, 12)
	bodyHeight := max(m.height-4, 3)

	rendered := make([]string, 0, len(model.BoardStatuses))
	for i, status := range model.BoardStatuses {
		style := theme.ColumnStyle
		switch {
		case dragging && drag.To == status:
			style = theme.DropTargetStyle
		case i == m.col:
			style = theme.FocusedColumnStyle
		}
		body := m.renderColumn(status, cols.Get(status), i == m.col, colWidth, drag, dragging)
		rendered = append(rendered, style.Width(colWidth).Height(bodyHeight).Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
	)
}

func (m *Model) renderColumn(
	status model.Status,
	tasks []model.Task,
	focused bool,
	width int,
	drag board.DragEvent,
	dragging bool,
) string {
	var b strings.Builder
	b.WriteString(theme.StatusStyle(status).Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks))))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString(theme.DimmedStyle.Render("no tasks"))
		return b.String()
	}

	today := m.deps.Today()
	for row, t := range tasks {
		card := ui.RenderCard(t, ui.CardOptions{
			Width:    width - 2,
			Today:    today,
			Selected: m.coord.IsSelected(t.ID),
			Pending:  m.coord.State(t.ID) != board.Idle,
			Grabbed:  dragging && drag.TaskID == t.ID,
		})
		if focused && row == m.rows[m.col] {
			b.WriteString(theme.SelectedItemStyle.Render(card))
		} else {
			b.WriteString(theme.ListItemStyle.Render(card))
		}
		b.WriteString("\n")
	}
	return b.String()
}
