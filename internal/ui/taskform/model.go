package taskform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
)

// SubmitMsg is dispatched when the create form completes.
type SubmitMsg struct {
	Draft model.TaskDraft
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// backlogOption is the sprint select value for "no sprint".
const backlogOption int64 = 0

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title    string
	priority model.Priority
	status   model.Status
	dueDate  string
	subtasks string
	sprintID int64
}

// Model is the Bubble Tea model for the new-task form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	userID  int64
	sprints []model.Sprint
	width   int
	height  int
}

// New creates a task form for userID.
func New(userID int64, width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, status: model.StatusTodo},
		userID: userID,
		width:  width,
		height: height,
	}
}

// StartCreate resets the form. The sprint select offers sprints and
// preselects current, when set.
func (m *Model) StartCreate(sprints []model.Sprint, current *model.Sprint) tea.Cmd {
	m.sprints = sprints
	*m.fb = formBindings{
		priority: model.PriorityMedium,
		status:   model.StatusTodo,
		subtasks: "0",
		sprintID: backlogOption,
	}
	if current != nil {
		m.fb.sprintID = current.ID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Active reports whether the form is open.
func (m Model) Active() bool {
	return m.form != nil
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		draft, err := m.fb.draft(m.userID)
		if err != nil {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, func() tea.Msg { return SubmitMsg{Draft: draft} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	priorities := make([]huh.Option[model.Priority], 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorities = append(priorities, huh.NewOption(string(p), p))
	}
	statuses := make([]huh.Option[model.Status], 0, len(model.BoardStatuses))
	for _, s := range model.BoardStatuses {
		statuses = append(statuses, huh.NewOption(s.Label(), s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewSelect[model.Priority]().
				Title("Priority").
				Options(priorities...).
				Value(&m.fb.priority),
			huh.NewSelect[model.Status]().
				Title("Status").
				Options(statuses...).
				Value(&m.fb.status),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Due Date").
				Placeholder("YYYY-MM-DD (optional)").
				Value(&m.fb.dueDate).
				Validate(validateOptionalDate),
			huh.NewInput().
				Title("Subtasks").
				Placeholder("0").
				Value(&m.fb.subtasks).
				Validate(validateSubtasks),
			huh.NewSelect[int64]().
				Title("Sprint").
				Options(sprintOptions(m.sprints)...).
				Value(&m.fb.sprintID),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func sprintOptions(sprints []model.Sprint) []huh.Option[int64] {
	opts := []huh.Option[int64]{huh.NewOption("Backlog", backlogOption)}
	for _, s := range sprints {
		opts = append(opts, huh.NewOption(s.Title, s.ID))
	}
	return opts
}

// draft converts the bound values into a validated TaskDraft.
func (fb formBindings) draft(userID int64) (model.TaskDraft, error) {
	d := model.TaskDraft{
		UserID:   userID,
		Title:    fb.title,
		Priority: fb.priority,
		Status:   fb.status,
	}

	due, err := model.ParseDate(fb.dueDate)
	if err != nil {
		return model.TaskDraft{}, err
	}
	d.DueDate = due

	if s := strings.TrimSpace(fb.subtasks); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return model.TaskDraft{}, &model.ValidationError{
				Field:   "subtasks_total",
				Message: "subtask count must be a number",
			}
		}
		d.SubtasksTotal = n
	}

	if fb.sprintID != backlogOption {
		id := fb.sprintID
		d.SprintID = &id
	}

	if err := d.Validate(); err != nil {
		return model.TaskDraft{}, err
	}
	return d, nil
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	if _, err := model.ParseDate(s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateSubtasks(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of subtasks")
	}
	return nil
}
