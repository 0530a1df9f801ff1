// Package command is the ":" palette that runs named app commands.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Arg  string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Names lists the commands the palette completes.
var Names = []string{
	"board", "backlog", "calendar", "sprints", "archived",
	"new", "setup", "reset", "refresh", "help", "quit",
}

// aliases maps shorthand to a canonical name.
var aliases = map[string]string{
	"q":    "quit",
	"sync": "refresh",
	"todo": "new",
	"plan": "setup",
}

// Parse splits input into a canonical command name and its argument.
func Parse(input string) CommandMsg {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	return CommandMsg{Name: name, Arg: strings.TrimSpace(arg)}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	active bool
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Width = max(width-6, 10)
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.ShowSuggestions = true
	ti.SetSuggestions(Names)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open focuses an empty palette.
func (m *Model) Open() tea.Cmd {
	m.active = true
	m.input.Reset()
	return m.input.Focus()
}

// Active reports whether the palette is open.
func (m Model) Active() bool { return m.active }

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			parsed := Parse(m.input.Value())
			m.active = false
			m.input.Blur()
			if parsed.Name == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, func() tea.Msg { return parsed }
		case tea.KeyEsc:
			m.active = false
			m.input.Blur()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Command Palette"),
		m.input.View(),
		theme.HelpStyle.Render(strings.Join(Names, " · ")),
	)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 20)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 10)
}
