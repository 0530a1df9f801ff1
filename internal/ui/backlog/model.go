// Package backlog is the Backlog tab: a searchable, sortable and
// paginated task table with multi-select bulk actions.
package backlog

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
	"github.com/nhle/brainmint/internal/view"
)

var sortKeys = []view.SortKey{
	view.SortPriority,
	view.SortDueDate,
	view.SortTitle,
	view.SortStatus,
	view.SortSprint,
}

const defaultPerPage = 10

// Model is the Backlog page.
type Model struct {
	deps     ui.Deps
	coord    *board.Coordinator
	search   textinput.Model
	debounce *board.Debouncer
	table    table.Model
	notices  ui.Notices

	searching bool
	criteria  view.Criteria
	sortIdx   int
	dir       view.Direction
	page      int
	perPage   int
	current   view.Page

	width  int
	height int
}

var _ ui.TaskPage = (*Model)(nil)

// New creates the Backlog page with its own coordinator.
func New(deps ui.Deps) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search tasks…"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	ti.Cursor.SetMode(cursor.CursorStatic)

	perPage := deps.PageSize
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(perPage+1),
	)

	return &Model{
		deps:     deps,
		coord:    board.NewCoordinator(deps.Store, deps.UserID, board.WithLogger(deps.Logger)),
		search:   ti,
		debounce: board.NewDebouncer(deps.Debounce),
		table:    t,
		page:     1,
		perPage:  perPage,
	}
}

func (m *Model) Init() tea.Cmd                    { return m.coord.Init() }
func (m *Model) Reload() tea.Cmd                  { return m.coord.Reload() }
func (m *Model) Capturing() bool                  { return m.searching }
func (m *Model) Busy() bool                       { return m.coord.Busy() }
func (m *Model) Coordinator() *board.Coordinator  { return m.coord }
func (m *Model) TakeNotice() (board.Notice, bool) { return m.notices.Take(m.coord.TakeNotice) }

// Leave abandons a pending search.
func (m *Model) Leave() {
	m.debounce.Cancel()
	m.searching = false
	m.search.Blur()
}

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.search.Width = max(width-10, 10)
}

// Hints returns the status bar shortcuts.
func (m *Model) Hints() string {
	if m.searching {
		return "type to search · enter done · esc clear"
	}
	return "/ search · f sprint filter · tab sort · o order · [/] page · space select · X/D/M bulk · n new"
}

func columns(width int) []table.Column {
	title := max(width-70, 20)
	return []table.Column{
		{Title: " ", Width: 1},
		{Title: "Title", Width: title},
		{Title: "Priority", Width: 8},
		{Title: "Status", Width: 11},
		{Title: "Due", Width: 10},
		{Title: "Sprint", Width: 14},
		{Title: "Progress", Width: 12},
	}
}

// SortKey returns the active sort key.
func (m *Model) SortKey() view.SortKey { return sortKeys[m.sortIdx] }

// Criteria returns the active filter.
func (m *Model) Criteria() view.Criteria { return m.criteria }

// Current returns the page of tasks on screen.
func (m *Model) Current() view.Page { return m.current }

// Focused returns the row under the cursor.
func (m *Model) Focused() (model.Task, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.current.Items) {
		return model.Task{}, false
	}
	return m.current.Items[i], true
}

// refresh re-derives the visible page from the collection.
func (m *Model) refresh() {
	tasks := view.Filter(m.coord.Collection().Tasks(), m.criteria)
	tasks = view.Sort(tasks, m.SortKey(), m.dir)
	m.current = view.Paginate(tasks, m.page, m.perPage)
	m.page = m.current.Page

	rows := make([]table.Row, 0, len(m.current.Items))
	for _, t := range m.current.Items {
		mark := " "
		if m.coord.IsSelected(t.ID) {
			mark = "●"
		}
		sprint := t.SprintName
		if t.InBacklog() {
			sprint = "Backlog"
		}
		rows = append(rows, table.Row{
			mark,
			t.Title,
			string(t.Priority),
			t.Status.Label(),
			t.DueKey(),
			sprint,
			ui.ProgressLabel(t),
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// Update handles keys, debounced search and coordinator messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.coord.Handle(msg); ok {
		m.refresh()
		return cmd
	}

	switch msg := msg.(type) {
	case board.DebounceMsg:
		if value, ok := m.debounce.Accept(msg); ok {
			m.criteria.Search = value
			m.page = 1
			m.refresh()
		}
		return nil
	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.debounce.Cancel()
		m.criteria.Search = m.search.Value()
		m.page = 1
		m.refresh()
		return nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.debounce.Cancel()
		m.criteria.Search = ""
		m.refresh()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.debounce.Trigger(m.search.Value()))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	km := m.deps.Keys

	switch {
	case key.Matches(msg, km.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, km.CycleSort):
		m.sortIdx = (m.sortIdx + 1) % len(sortKeys)
		m.refresh()
		return nil
	case key.Matches(msg, km.ToggleOrder):
		if m.dir == view.Asc {
			m.dir = view.Desc
		} else {
			m.dir = view.Asc
		}
		m.refresh()
		return nil
	case key.Matches(msg, km.CycleFilter):
		m.criteria.Sprint = nextSprintFilter(m.criteria.Sprint, m.coord.Collection().Sprints())
		m.page = 1
		m.refresh()
		return nil
	case key.Matches(msg, km.ClearFilters):
		m.criteria = view.Criteria{}
		m.search.SetValue("")
		m.page = 1
		m.refresh()
		return nil
	case key.Matches(msg, km.NextPage):
		if m.current.HasNext() {
			m.page++
			m.table.SetCursor(0)
			m.refresh()
		}
		return nil
	case key.Matches(msg, km.PrevPage):
		if m.current.HasPrev() {
			m.page--
			m.table.SetCursor(0)
			m.refresh()
		}
		return nil
	case key.Matches(msg, km.Up), key.Matches(msg, km.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	case key.Matches(msg, km.Back):
		m.coord.ClearSelection()
		m.refresh()
		return nil
	}

	var focused *model.Task
	if t, ok := m.Focused(); ok {
		focused = &t
	}
	if cmd, kind, handled, err := ui.HandleBulkKey(km, m.coord, focused, msg); handled {
		m.notices.Fail(kind, err)
		m.refresh()
		return cmd
	}

	t, ok := m.Focused()
	if !ok {
		return nil
	}
	cmd, kind, handled, err := ui.HandleTaskKey(km, m.coord, t, msg, m.deps.Today())
	if !handled {
		return nil
	}
	m.notices.Fail(kind, err)
	m.refresh()
	return cmd
}

// nextSprintFilter cycles all, backlog only, then each sprint.
func nextSprintFilter(cur view.SprintFilter, sprints []model.Sprint) view.SprintFilter {
	order := make([]view.SprintFilter, 0, len(sprints)+2)
	order = append(order, view.AnySprint(), view.NoSprint())
	for _, s := range sprints {
		order = append(order, view.InSprint(s.ID))
	}
	for i, f := range order {
		if f == cur {
			return order[(i+1)%len(order)]
		}
	}
	return view.AnySprint()
}

func (m *Model) filterLabel() string {
	f := m.criteria.Sprint
	switch f {
	case view.AnySprint():
		return "all sprints"
	case view.NoSprint():
		return "backlog only"
	}
	for _, s := range m.coord.Collection().Sprints() {
		if view.InSprint(s.ID) == f {
			return s.Title
		}
	}
	return f.String()
}

// View renders the search box, the table and the pager.
func (m *Model) View() string {
	if !m.coord.Loaded() {
		if err := m.coord.LoadErr(); err != nil {
			return theme.OverdueStyle.Render("Could not load tasks: " + err.Error())
		}
		return theme.DimmedStyle.Render("Loading tasks…")
	}

	dir := "asc"
	if m.dir == view.Desc {
		dir = "desc"
	}
	meta := theme.DimmedStyle.Render(fmt.Sprintf(
		"%s · sort %s %s · %d selected",
		m.filterLabel(), m.SortKey(), dir, len(m.coord.Selected()),
	))

	searchLine := m.search.View()
	if !m.searching && m.criteria.Search == "" {
		searchLine = theme.HelpStyle.Render("/ to search")
	}

	body := m.table.View()
	if m.current.TotalItems == 0 {
		body = theme.DimmedStyle.Render("No tasks match.")
	}

	pager := theme.DimmedStyle.Render(fmt.Sprintf(
		"page %d of %d · %d tasks", m.current.Page, m.current.TotalPages, m.current.TotalItems,
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		searchLine,
		meta,
		body,
		pager,
	)
}
