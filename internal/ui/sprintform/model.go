// Package sprintform is the sprint setup wizard: first the project
// title and sprint count, then one editable timeline row per sprint.
package sprintform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
)

// SubmitMsg carries the finished plan.
type SubmitMsg struct {
	Plan model.SprintPlan
}

// CancelMsg is dispatched when the user aborts the wizard.
type CancelMsg struct{}

const (
	defaultCount      = 4
	defaultLengthDays = 14
)

type stage int

const (
	stageProject stage = iota
	stageTimeline
)

// rowBindings holds one sprint row of the timeline step.
type rowBindings struct {
	title string
	start string
	end   string
}

type formBindings struct {
	projectTitle string
	count        string
	start        string
	length       string
	rows         []*rowBindings
}

// Model is the Bubble Tea model for the sprint setup wizard.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	stage  stage
	userID int64
	now    func() time.Time
	width  int
	height int
}

// New creates the wizard for userID.
func New(userID int64, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		userID: userID,
		now:    time.Now,
		width:  width,
		height: height,
	}
}

// Start opens the first step.
func (m *Model) Start(projectTitle string) tea.Cmd {
	*m.fb = formBindings{
		projectTitle: projectTitle,
		count:        strconv.Itoa(defaultCount),
		start:        model.Day(m.now()).Format(model.DateLayout),
		length:       strconv.Itoa(defaultLengthDays),
	}
	m.stage = stageProject
	m.form = m.buildProjectForm()
	return m.form.Init()
}

// Active reports whether the wizard is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the wizard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	case huh.StateCompleted:
		if m.stage == stageProject {
			m.fb.rows = scheduleRows(m.fb)
			m.stage = stageTimeline
			m.form = m.buildTimelineForm()
			return m, m.form.Init()
		}
		m.form = nil
		plan, err := m.fb.plan(m.userID)
		if err != nil {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, func() tea.Msg { return SubmitMsg{Plan: plan} }
	}

	return m, cmd
}

// View renders the wizard.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	heading := "Project Setup"
	if m.stage == stageTimeline {
		heading = "Sprint Timeline"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(titleStyle.Render(heading) + "\n" + m.form.View())
}

// SetSize updates the wizard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildProjectForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project title").
				Placeholder(model.DefaultProjectTitle).
				Value(&m.fb.projectTitle),
			huh.NewInput().
				Title(fmt.Sprintf("Sprints (%d-%d)", model.MinSprints, model.MaxSprints)).
				Value(&m.fb.count).
				Validate(validatePositive),
			huh.NewInput().
				Title("First sprint starts").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.start).
				Validate(validateDate),
			huh.NewInput().
				Title("Days per sprint").
				Value(&m.fb.length).
				Validate(validatePositive),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) buildTimelineForm() *huh.Form {
	groups := make([]*huh.Group, 0, len(m.fb.rows))
	for i, row := range m.fb.rows {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Sprint %d title", i+1)).
				Value(&row.title),
			huh.NewInput().
				Title("Start").
				Value(&row.start).
				Validate(validateDate),
			huh.NewInput().
				Title("End").
				Value(&row.end).
				Validate(validateDate),
		))
	}
	return huh.NewForm(groups...).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

// Schedule lays out count back-to-back sprints of lengthDays each,
// starting on start. count is clamped to the setup limits.
func Schedule(count int, start time.Time, lengthDays int) []model.SprintSpec {
	count = model.ClampSprintCount(count)
	lengthDays = max(lengthDays, 1)
	start = model.Day(start)

	specs := make([]model.SprintSpec, count)
	for i := range specs {
		s := start.AddDate(0, 0, i*lengthDays)
		specs[i] = model.SprintSpec{
			Title:     fmt.Sprintf("Sprint %d", i+1),
			StartDate: s,
			EndDate:   s.AddDate(0, 0, lengthDays-1),
		}
	}
	return specs
}

// scheduleRows seeds the timeline step from the first step's answers.
func scheduleRows(fb *formBindings) []*rowBindings {
	count, _ := strconv.Atoi(strings.TrimSpace(fb.count))
	length, _ := strconv.Atoi(strings.TrimSpace(fb.length))
	start, err := model.ParseDate(fb.start)
	if err != nil || start == nil {
		now := model.Day(time.Now())
		start = &now
	}

	specs := Schedule(count, *start, length)
	rows := make([]*rowBindings, len(specs))
	for i, s := range specs {
		rows[i] = &rowBindings{
			title: s.Title,
			start: s.StartDate.Format(model.DateLayout),
			end:   s.EndDate.Format(model.DateLayout),
		}
	}
	return rows
}

// plan converts the timeline rows into a validated SprintPlan.
func (fb *formBindings) plan(userID int64) (model.SprintPlan, error) {
	p := model.SprintPlan{
		UserID:       userID,
		ProjectTitle: fb.projectTitle,
		Sprints:      make([]model.SprintSpec, 0, len(fb.rows)),
	}
	for _, row := range fb.rows {
		spec := model.SprintSpec{Title: row.title}
		if d, err := model.ParseDate(row.start); err == nil && d != nil {
			spec.StartDate = *d
		}
		if d, err := model.ParseDate(row.end); err == nil && d != nil {
			spec.EndDate = *d
		}
		p.Sprints = append(p.Sprints, spec)
	}
	if err := p.Validate(); err != nil {
		return model.SprintPlan{}, err
	}
	return p, nil
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateDate(s string) error {
	d, err := model.ParseDate(s)
	if err != nil || d == nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}
