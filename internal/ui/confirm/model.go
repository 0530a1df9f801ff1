package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/brainmint/internal/theme"
)

// ResultMsg reports the answer for the action that was asked about.
type ResultMsg struct {
	Action    string
	Confirmed bool
}

type bindings struct {
	answer bool
}

// Model is a yes/no prompt for destructive actions.
type Model struct {
	form   *huh.Form
	b      *bindings
	action string
	width  int
}

// New creates an idle prompt.
func New(width int) Model {
	return Model{b: &bindings{}, width: width}
}

// Ask opens the prompt. The eventual ResultMsg carries action.
func (m *Model) Ask(action, title, description string) tea.Cmd {
	m.action = action
	m.b.answer = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&m.b.answer),
		),
	).WithWidth(min(max(m.width-8, 30), 80)).WithShowHelp(false)
	return m.form.Init()
}

// Active reports whether the prompt is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Update forwards input to the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted, huh.StateAborted:
		res := ResultMsg{
			Action:    m.action,
			Confirmed: m.form.State == huh.StateCompleted && m.b.answer,
		}
		m.form = nil
		return m, func() tea.Msg { return res }
	}
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return theme.DetailPanelStyle.Render(m.form.View())
}

// SetWidth updates the prompt width.
func (m *Model) SetWidth(width int) {
	m.width = width
}
