// Package help renders the keyboard shortcut overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/theme"
)

var sectionTitles = []string{
	"Navigation", "Tabs", "Task", "Schedule", "Selection", "Backlog", "Project",
}

// Model is the help overlay. It lists every binding grouped by section
// and the shortcuts of the tab it was opened from.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	page   string
	hints  string
	width  int
	height int
}

// New creates the overlay.
func New(km *keys.KeyMap, width, height int) Model {
	m := Model{keys: km, help: help.New()}
	m.SetSize(width, height)
	return m
}

// SetPage records the tab the overlay describes.
func (m *Model) SetPage(name, hints string) {
	m.page = name
	m.hints = hints
}

// Page returns the tab name set by SetPage.
func (m Model) Page() string { return m.page }

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(0, width-4)
}

// View renders the overlay.
func (m Model) View() string {
	blocks := []string{theme.HeaderStyle.Render("Keyboard shortcuts")}
	if m.page != "" && m.hints != "" {
		blocks = append(blocks,
			theme.DimmedStyle.Render("On "+m.page+": ")+m.hints,
		)
	}

	groups := m.keys.FullHelp()
	columns := make([]string, 0, len(groups))
	for i, group := range groups {
		title := ""
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		columns = append(columns, m.renderSection(title, group))
	}
	blocks = append(blocks, "", wrapColumns(columns, max(m.width-6, 20)))

	return theme.DetailPanelStyle.
		Width(max(0, m.width-4)).
		Height(max(0, m.height-4)).
		Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func (m Model) renderSection(title string, bindings []key.Binding) string {
	lines := []string{theme.DueDateStyle.Render(title)}
	lines = append(lines, m.help.FullHelpView([][]key.Binding{bindings}))
	return lipgloss.NewStyle().PaddingRight(3).Render(strings.Join(lines, "\n"))
}

// wrapColumns lays sections out left to right, starting a new row when
// the next one would overflow width.
func wrapColumns(columns []string, width int) string {
	var (
		rows []string
		row  []string
		used int
	)
	for _, c := range columns {
		w := lipgloss.Width(c)
		if len(row) > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, used = nil, 0
		}
		row = append(row, c)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n\n")
}
