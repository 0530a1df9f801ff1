// Package calendar is the Calendar tab: a month grid of tasks by due
// date where cards can be dragged to another day.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
	"github.com/nhle/brainmint/internal/view"
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Model is the Calendar page.
type Model struct {
	deps    ui.Deps
	coord   *board.Coordinator
	adapter *board.Adapter
	notices ui.Notices

	cursor  time.Time
	taskIdx int
	grabbed string

	width  int
	height int
}

var _ ui.TaskPage = (*Model)(nil)

// New creates the Calendar page with its cursor on today.
func New(deps ui.Deps) *Model {
	c := board.NewCoordinator(deps.Store, deps.UserID, board.WithLogger(deps.Logger))
	return &Model{
		deps:    deps,
		coord:   c,
		adapter: board.NewAdapter(c),
		cursor:  deps.Today(),
	}
}

func (m *Model) Init() tea.Cmd                    { return m.coord.Init() }
func (m *Model) Reload() tea.Cmd                  { return m.coord.Reload() }
func (m *Model) Leave()                           { m.grabbed = "" }
func (m *Model) Capturing() bool                  { return false }
func (m *Model) Busy() bool                       { return m.coord.Busy() }
func (m *Model) Coordinator() *board.Coordinator  { return m.coord }
func (m *Model) TakeNotice() (board.Notice, bool) { return m.notices.Take(m.coord.TakeNotice) }

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Cursor returns the highlighted day.
func (m *Model) Cursor() time.Time { return m.cursor }

// Hints returns the status bar shortcuts.
func (m *Model) Hints() string {
	if m.grabbed != "" {
		return "move to a day · enter drop · esc cancel"
	}
	return "h/l day · j/k week · [/] month · tab next task · m move · {/} due ± · n new"
}

func (m *Model) buckets() map[string][]model.Task {
	return view.BucketByCalendarDay(m.coord.Collection().Tasks())
}

func (m *Model) dayTasks(day time.Time) []model.Task {
	return m.buckets()[day.Format(model.DateLayout)]
}

// Focused returns the selected task on the highlighted day.
func (m *Model) Focused() (model.Task, bool) {
	tasks := m.dayTasks(m.cursor)
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	return tasks[min(m.taskIdx, len(tasks)-1)], true
}

func (m *Model) move(days int) {
	m.cursor = m.cursor.AddDate(0, 0, days)
	m.taskIdx = 0
}

func (m *Model) moveMonth(months int) {
	first := time.Date(m.cursor.Year(), m.cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := first.AddDate(0, months, 0)
	last := target.AddDate(0, 1, -1).Day()
	m.cursor = time.Date(target.Year(), target.Month(), min(m.cursor.Day(), last), 0, 0, 0, 0, time.UTC)
	m.taskIdx = 0
}

// Update handles keys and coordinator messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.coord.Handle(msg); ok {
		if m.grabbed != "" {
			if _, err := m.coord.Collection().FindByID(m.grabbed); err != nil {
				m.grabbed = ""
			}
		}
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

	switch {
	case key.Matches(msg, km.Left):
		m.move(-1)
		return nil
	case key.Matches(msg, km.Right):
		m.move(1)
		return nil
	case key.Matches(msg, km.Up):
		m.move(-7)
		return nil
	case key.Matches(msg, km.Down):
		m.move(7)
		return nil
	case key.Matches(msg, km.PrevMonth):
		m.moveMonth(-1)
		return nil
	case key.Matches(msg, km.NextMonth):
		m.moveMonth(1)
		return nil
	}

	if m.grabbed != "" {
		switch {
		case key.Matches(msg, km.Drop), key.Matches(msg, km.Grab):
			id := m.grabbed
			m.grabbed = ""
			cmd, err := m.adapter.DropOnDay(id, m.cursor)
			m.notices.Fail(board.KindDueDate, err)
			return cmd
		case key.Matches(msg, km.Back):
			m.grabbed = ""
		}
		return nil
	}

	switch {
	case key.Matches(msg, km.CycleSort):
		if n := len(m.dayTasks(m.cursor)); n > 0 {
			m.taskIdx = (m.taskIdx + 1) % n
		}
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
		m.grabbed = t.ID
		return nil
	}

	cmd, kind, handled, err := ui.HandleTaskKey(km, m.coord, t, msg, m.deps.Today())
	if !handled {
		return nil
	}
	m.notices.Fail(kind, err)
	if kind == board.KindDueDate {
		if next, err := m.coord.Collection().FindByID(t.ID); err == nil && next.HasDueDate() {
			m.cursor = model.Day(*next.DueDate)
			m.taskIdx = 0
		}
	}
	return cmd
}

// View renders the month grid and the tasks due on the cursor day.
func (m *Model) View() string {
	if !m.coord.Loaded() {
		if err := m.coord.LoadErr(); err != nil {
			return theme.OverdueStyle.Render("Could not load the calendar: " + err.Error())
		}
		return theme.DimmedStyle.Render("Loading calendar…")
	}

	buckets := m.buckets()
	grid := view.MonthGrid(m.cursor.Year(), m.cursor.Month(), buckets)
	today := m.deps.Today()
	cellWidth := max(m.width/7-1, 8)
	linesPerCell := max((m.height-12)/max(len(grid), 1)-1, 1)

	header := make([]string, len(weekdays))
	for i, d := range weekdays {
		header[i] = theme.DimmedStyle.Width(cellWidth).Render(d)
	}

	rows := []string{
		theme.HeaderStyle.Render(m.cursor.Format("January 2006")),
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}
	for _, week := range grid {
		cells := make([]string, len(week))
		for i, cell := range week {
			cells[i] = m.renderCell(cell, today, cellWidth, linesPerCell)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	rows = append(rows, "", m.renderDay(today))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCell(cell view.CalendarCell, today time.Time, width, lines int) string {
	style := lipgloss.NewStyle().Width(width).Height(lines + 1)
	if !cell.InMonth() {
		return style.Render("")
	}

	label := fmt.Sprintf("%2d", cell.Date.Day())
	if cell.Date.Equal(today) {
		label = theme.TodayStyle.Render(label)
	}
	if len(cell.Tasks) > 0 {
		label += theme.DimmedStyle.Render(fmt.Sprintf(" (%d)", len(cell.Tasks)))
	}

	out := []string{label}
	for i, t := range cell.Tasks {
		if i == lines {
			out[len(out)-1] = theme.DimmedStyle.Render(fmt.Sprintf("+%d more", len(cell.Tasks)-i+1))
			break
		}
		title := ui.Truncate(t.Title, width-1)
		if t.ID == m.grabbed {
			title = "≡" + ui.Truncate(t.Title, width-2)
		}
		out = append(out, theme.PriorityStyle(t.Priority).UnsetBold().Render(title))
	}

	if cell.Date.Equal(m.cursor) {
		style = style.Reverse(true)
		if m.grabbed != "" {
			style = style.Foreground(theme.ColorYellow)
		}
	}
	return style.Render(strings.Join(out, "\n"))
}

func (m *Model) renderDay(today time.Time) string {
	tasks := m.dayTasks(m.cursor)
	title := theme.HeaderStyle.Render(m.cursor.Format("Monday, Jan 2"))
	if len(tasks) == 0 {
		return title + "\n" + theme.DimmedStyle.Render("Nothing due.")
	}

	var b strings.Builder
	b.WriteString(title)
	for i, t := range tasks {
		card := ui.RenderCard(t, ui.CardOptions{
			Width:    max(m.width-6, 20),
			Today:    today,
			Selected: m.coord.IsSelected(t.ID),
			Pending:  m.coord.State(t.ID) != board.Idle,
			Grabbed:  t.ID == m.grabbed,
		})
		b.WriteString("\n")
		if i == min(m.taskIdx, len(tasks)-1) {
			b.WriteString(theme.SelectedItemStyle.Render(card))
		} else {
			b.WriteString(theme.ListItemStyle.Render(card))
		}
	}
	return b.String()
}
