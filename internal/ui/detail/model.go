package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
)

// BackMsg signals the parent to close the detail panel.
type BackMsg struct{}

// Model is the task detail panel.
type Model struct {
	task     *model.Task
	state    board.MutationState
	today    time.Time
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a closed detail panel.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Open shows t. state is its pending mutation state on the page it was
// opened from.
func (m *Model) Open(t model.Task, state board.MutationState, today time.Time) {
	m.task = &t
	m.state = state
	m.today = today
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Close hides the panel.
func (m *Model) Close() { m.task = nil }

// Active reports whether the panel is open.
func (m Model) Active() bool { return m.task != nil }

// Update handles messages for the detail panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, m.keys.Back, m.keys.Detail) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail panel.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}
	return theme.DetailPanelStyle.Render(m.viewport.View())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}
	task := *m.task

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections := []string{titleStyle.Render(task.Title)}

	badges := []string{
		theme.StatusStyle(task.Status).Render(task.Status.Label()),
		theme.PriorityStyle(task.Priority).Render(string(task.Priority)),
	}
	if m.state != board.Idle {
		badges = append(badges, theme.DueDateStyle.Render(m.state.String()))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return metaStyle.Render(label) + valStyle.Render(value)
	}

	sprint := "Backlog"
	if !task.InBacklog() {
		sprint = task.SprintName
	}
	sections = append(sections, row("Sprint:", sprint))

	due := "none"
	if task.HasDueDate() {
		due = ui.DueLabel(task, m.today)
		if ui.IsOverdue(task, m.today) {
			due = theme.OverdueStyle.Render(due)
		}
	}
	sections = append(sections, row("Due:", due))
	sections = append(sections, row("Progress:", ui.ProgressLabel(task)))
	if task.Subtasks.Total > 0 {
		sections = append(sections, row("Subtasks:", subtaskBar(task.Subtasks, 20)))
	}
	if task.Avatar != "" {
		sections = append(sections, row("Assignee:", task.Avatar))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	sections = append(sections, "",
		sepStyle.Render(strings.Repeat("─", min(max(m.width-4, 10), 80))),
		theme.DimmedStyle.Render("id "+task.ID),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func subtaskBar(s model.Subtasks, width int) string {
	filled := s.Completed * width / s.Total
	return theme.DoneBarStyle.Render(strings.Repeat("█", filled)) +
		theme.BarStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d/%d", s.Completed, s.Total)
}

// SetSize updates the detail panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
