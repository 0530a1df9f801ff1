// Package archived is the Archived tab: the archived task shelf with
// restore and permanent delete.
package archived

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
)

// Model is the Archived page.
type Model struct {
	deps    ui.Deps
	shelf   *board.ArchiveShelf
	table   table.Model
	notices ui.Notices

	width  int
	height int
}

var _ ui.Page = (*Model)(nil)

// New creates the Archived page.
func New(deps ui.Deps) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	return &Model{
		deps:  deps,
		shelf: board.NewArchiveShelf(deps.Store, deps.UserID, board.WithLogger(deps.Logger)),
		table: t,
	}
}

func (m *Model) Init() tea.Cmd   { return m.shelf.Init() }
func (m *Model) Reload() tea.Cmd { return m.shelf.Reload() }
func (m *Model) Leave()          {}
func (m *Model) Capturing() bool { return false }
func (m *Model) Busy() bool      { return m.shelf.Busy() }

// TakeNotice pops the next page or shelf notice.
func (m *Model) TakeNotice() (board.Notice, bool) { return m.notices.Take(m.shelf.TakeNotice) }

// Shelf exposes the archived task list.
func (m *Model) Shelf() *board.ArchiveShelf { return m.shelf }

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-4, 3))
}

// Hints returns the status bar shortcuts.
func (m *Model) Hints() string {
	return "j/k move · u restore · d delete · r refresh · ? help"
}

func columns(width int) []table.Column {
	return []table.Column{
		{Title: "Title", Width: max(width-44, 20)},
		{Title: "Priority", Width: 8},
		{Title: "Due", Width: 12},
		{Title: "Restores to", Width: 12},
	}
}

// Focused returns the archived task under the cursor.
func (m *Model) Focused() (model.ArchivedTask, bool) {
	tasks := m.shelf.Tasks()
	i := m.table.Cursor()
	if i < 0 || i >= len(tasks) {
		return model.ArchivedTask{}, false
	}
	return tasks[i], true
}

func (m *Model) refresh() {
	tasks := m.shelf.Tasks()
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, table.Row{
			t.Title,
			string(t.Priority),
			t.DueKey(),
			t.RestoreStatus().Label(),
		})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Update handles keys and shelf messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.shelf.Handle(msg); ok {
		m.refresh()
		return cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	km := m.deps.Keys

	switch {
	case key.Matches(keyMsg, km.Up), key.Matches(keyMsg, km.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return cmd

	case key.Matches(keyMsg, km.Unarchive):
		t, ok := m.Focused()
		if !ok {
			return nil
		}
		cmd := m.shelf.Unarchive(t.ID)
		m.refresh()
		return cmd

	case key.Matches(keyMsg, km.Delete):
		t, ok := m.Focused()
		if !ok {
			return nil
		}
		id := t.ID
		return ui.Confirm(board.KindDelete,
			fmt.Sprintf("Delete %q?", t.Title),
			"The archived task is removed permanently.",
			func() (tea.Cmd, error) {
				cmd := m.shelf.DeleteArchived(id)
				m.refresh()
				return cmd, nil
			},
		)
	}
	return nil
}

// View renders the shelf.
func (m *Model) View() string {
	if !m.shelf.Loaded() {
		return theme.DimmedStyle.Render("Loading archived tasks…")
	}
	n := len(m.shelf.Tasks())
	heading := theme.HeaderStyle.Render("Archived") + " " +
		theme.DimmedStyle.Render(fmt.Sprintf("(%d)", n))
	if n == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			heading,
			"",
			theme.DimmedStyle.Render("Nothing archived."),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, heading, m.table.View())
}
