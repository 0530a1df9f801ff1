package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/remote"
	appsync "github.com/nhle/brainmint/internal/sync"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
	"github.com/nhle/brainmint/internal/ui/archived"
	"github.com/nhle/brainmint/internal/ui/backlog"
	"github.com/nhle/brainmint/internal/ui/calendar"
	"github.com/nhle/brainmint/internal/ui/command"
	"github.com/nhle/brainmint/internal/ui/confirm"
	"github.com/nhle/brainmint/internal/ui/detail"
	helpview "github.com/nhle/brainmint/internal/ui/help"
	"github.com/nhle/brainmint/internal/ui/kanban"
	"github.com/nhle/brainmint/internal/ui/sprintform"
	"github.com/nhle/brainmint/internal/ui/sprints"
	"github.com/nhle/brainmint/internal/ui/taskform"
)

// toastDuration is how long a toast stays in the status bar.
const toastDuration = 4 * time.Second

// Tab indexes the dashboard pages.
type Tab int

const (
	TabBoard Tab = iota
	TabBacklog
	TabCalendar
	TabSprints
	TabArchived
)

var tabNames = []string{"Board", "Backlog", "Calendar", "Sprints", "Archived"}

func (t Tab) String() string { return tabNames[t] }

// overlay is the dialog drawn over the active page.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayTaskForm
	overlaySprintForm
	overlayConfirm
	overlayDetail
	overlayCommand
	overlayNotice
)

// toastExpiredMsg clears the toast it was scheduled for.
type toastExpiredMsg struct {
	seq int
}

// Options configures the dashboard.
type Options struct {
	Store        remote.Store
	UserID       int64
	Logger       *slog.Logger
	PollInterval time.Duration
	Debounce     time.Duration
	PageSize     int
	Now          func() time.Time
}

// Model is the root Bubble Tea model. It routes keys to the active tab,
// owns the dialogs shared by the pages and surfaces their notices.
type Model struct {
	deps   ui.Deps
	keys   *keys.KeyMap
	logger *slog.Logger

	pages  []ui.Page
	active Tab
	layout ui.Layout
	ready  bool

	overlay    overlay
	helpView   helpview.Model
	taskForm   taskform.Model
	sprintForm sprintform.Model
	confirm    confirm.Model
	detail     detail.Model
	palette    command.Model

	pending  func() (tea.Cmd, error)
	notice   board.Notice
	toast    string
	toastSeq int

	spinner  spinner.Model
	spinning bool
	poller   *appsync.Poller
}

// New builds the dashboard with one page per tab. Every page owns its
// own coordinator over opts.Store.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps := ui.Deps{
		Store:    opts.Store,
		UserID:   opts.UserID,
		Keys:     keys.DefaultKeyMap(),
		Logger:   logger,
		Now:      opts.Now,
		Debounce: opts.Debounce,
		PageSize: opts.PageSize,
	}

	var probe appsync.Prober
	if p, ok := opts.Store.(appsync.Prober); ok {
		probe = p
	}
	poller := appsync.New(probe, opts.PollInterval, appsync.WithLogger(logger))

	pages := []ui.Page{
		kanban.New(deps),
		backlog.New(deps),
		calendar.New(deps),
		sprints.New(deps),
		archived.New(deps),
	}
	return newModel(deps, pages, poller)
}

func newModel(deps ui.Deps, pages []ui.Page, poller *appsync.Poller) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.DueDateStyle

	return Model{
		deps:       deps,
		keys:       deps.Keys,
		logger:     logger,
		pages:      pages,
		helpView:   helpview.New(deps.Keys, 80, 24),
		taskForm:   taskform.New(deps.UserID, 80, 24),
		sprintForm: sprintform.New(deps.UserID, 80, 24),
		confirm:    confirm.New(80),
		detail:     detail.New(deps.Keys, 80, 24),
		palette:    command.New(80, 24),
		spinner:    sp,
		poller:     poller,
	}
}

// Init loads every page and starts the background poller.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages)+1)
	for _, p := range m.pages {
		cmds = append(cmds, p.Init())
	}
	cmds = append(cmds, m.poller.Start())
	return tea.Batch(cmds...)
}

// Active returns the focused tab.
func (m Model) Active() Tab { return m.active }

func (m Model) page() ui.Page { return m.pages[m.active] }

// taskPage returns the active page when it manages tasks.
func (m Model) taskPage() (ui.TaskPage, bool) {
	tp, ok := m.page().(ui.TaskPage)
	return tp, ok
}

// Update handles messages and dispatches to the pages and dialogs.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.route(msg)
	notices := m.collectNotices()
	spin := m.spin()
	return m, tea.Batch(cmd, notices, spin)
}

func (m Model) route(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.forwardOverlay(msg)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case appsync.TickMsg:
		var reload tea.Cmd
		if msg.Err == nil {
			reload = m.page().Reload()
		}
		return m, tea.Batch(reload, m.poller.WaitForNextResult())

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case ui.ConfirmMsg:
		m.pending = msg.OnYes
		m.overlay = overlayConfirm
		next := m.confirm.Ask(string(msg.Kind), msg.Title, msg.Description)
		return m, next

	case confirm.ResultMsg:
		m.overlay = overlayNone
		onYes := m.pending
		m.pending = nil
		if !msg.Confirmed || onYes == nil {
			return m, nil
		}
		cmd, err := onYes()
		if err != nil {
			next := m.showToast(err.Error())
			return m, next
		}
		return m, cmd

	case taskform.SubmitMsg:
		m.overlay = overlayNone
		tp, ok := m.taskPage()
		if !ok {
			return m, nil
		}
		cmd, err := tp.Coordinator().CreateTask(msg.Draft)
		if err != nil {
			next := m.showToast(err.Error())
			return m, next
		}
		return m, cmd

	case sprintform.SubmitMsg:
		m.overlay = overlayNone
		tp, ok := m.taskPage()
		if !ok {
			return m, nil
		}
		cmd, err := tp.Coordinator().SetupSprints(msg.Plan)
		if err != nil {
			next := m.showToast(err.Error())
			return m, next
		}
		return m, cmd

	case taskform.CancelMsg, sprintform.CancelMsg, command.CancelMsg:
		m.overlay = overlayNone
		return m, nil

	case detail.BackMsg:
		m.overlay = overlayNone
		m.detail.Close()
		return m, nil

	case command.CommandMsg:
		m.overlay = overlayNone
		return m.execute(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	m, cmd := m.forwardOverlay(msg)
	return m, tea.Batch(cmd, m.broadcast(msg))
}

// broadcast delivers a non-key message to every page. Pages ignore
// messages owned by another page's coordinator.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.pages))
	for _, p := range m.pages {
		cmds = append(cmds, p.Update(msg))
	}
	return tea.Batch(cmds...)
}

// forwardOverlay passes msg to the open form, if any.
func (m Model) forwardOverlay(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.overlay {
	case overlayTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case overlaySprintForm:
		m.sprintForm, cmd = m.sprintForm.Update(msg)
	case overlayConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	case overlayDetail:
		m.detail, cmd = m.detail.Update(msg)
	case overlayCommand:
		m.palette, cmd = m.palette.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.poller.Stop()
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayNotice:
		if key.Matches(msg, m.keys.DismissNotice) {
			m.overlay = overlayNone
			m.notice = board.Notice{}
		}
		return m, nil
	case overlayHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayNone:
	default:
		return m.forwardOverlay(msg)
	}

	if m.page().Capturing() {
		return m, m.page().Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.poller.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.BoardTab):
		next := m.switchTab(TabBoard)
		return m, next
	case key.Matches(msg, m.keys.BacklogTab):
		next := m.switchTab(TabBacklog)
		return m, next
	case key.Matches(msg, m.keys.CalendarTab):
		next := m.switchTab(TabCalendar)
		return m, next
	case key.Matches(msg, m.keys.SprintsTab):
		next := m.switchTab(TabSprints)
		return m, next
	case key.Matches(msg, m.keys.ArchivedTab):
		next := m.switchTab(TabArchived)
		return m, next
	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
		return m, m.page().Reload()
	case key.Matches(msg, m.keys.New):
		next := m.openTaskForm()
		return m, next
	case key.Matches(msg, m.keys.SetupSprints):
		next := m.openSprintForm()
		return m, next
	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.overlay = overlayCommand
		next := m.palette.Open()
		return m, next
	}

	return m, m.page().Update(msg)
}

// switchTab focuses t and refreshes it.
func (m *Model) switchTab(t Tab) tea.Cmd {
	if t == m.active {
		return nil
	}
	m.page().Leave()
	m.active = t
	return m.page().Reload()
}

func (m *Model) openTaskForm() tea.Cmd {
	tp, ok := m.taskPage()
	if !ok {
		return nil
	}
	coll := tp.Coordinator().Collection()
	m.overlay = overlayTaskForm
	return m.taskForm.StartCreate(coll.Sprints(), coll.CurrentSprint())
}

func (m *Model) openSprintForm() tea.Cmd {
	tp, ok := m.taskPage()
	if !ok {
		return nil
	}
	m.overlay = overlaySprintForm
	return m.sprintForm.Start(tp.Coordinator().Collection().ProjectTitle())
}

func (m *Model) openHelp() {
	m.helpView.SetPage(tabNames[m.active], m.page().Hints())
	m.overlay = overlayHelp
}

func (m *Model) openDetail() {
	tp, ok := m.taskPage()
	if !ok {
		return
	}
	t, ok := tp.Focused()
	if !ok {
		return
	}
	m.detail.Open(t, tp.Coordinator().State(t.ID), m.deps.Today())
	m.overlay = overlayDetail
}

// execute runs a command palette entry.
func (m Model) execute(c command.CommandMsg) (Model, tea.Cmd) {
	switch c.Name {
	case "board":
		next := m.switchTab(TabBoard)
		return m, next
	case "backlog":
		next := m.switchTab(TabBacklog)
		return m, next
	case "calendar":
		next := m.switchTab(TabCalendar)
		return m, next
	case "sprints":
		next := m.switchTab(TabSprints)
		return m, next
	case "archived":
		next := m.switchTab(TabArchived)
		return m, next
	case "new":
		next := m.openTaskForm()
		return m, next
	case "setup":
		next := m.openSprintForm()
		return m, next
	case "reset":
		tp, ok := m.taskPage()
		if !ok {
			return m, nil
		}
		return m, ui.ConfirmReset(tp.Coordinator())
	case "refresh":
		m.poller.Refresh()
		return m, m.page().Reload()
	case "help":
		m.openHelp()
		return m, nil
	case "quit":
		m.poller.Stop()
		return m, tea.Quit
	}
	next := m.showToast(fmt.Sprintf("Unknown command %q", c.Name))
	return m, next
}

// collectNotices drains every page. A blocking notice opens the notice
// dialog; toasts replace the status bar hints for a while.
func (m *Model) collectNotices() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.pages {
		for {
			n, ok := p.TakeNotice()
			if !ok {
				break
			}
			switch n.Level {
			case board.Blocking:
				m.notice = n
				if m.overlay == overlayNone {
					m.overlay = overlayNotice
				}
			case board.Toast:
				cmds = append(cmds, m.showToast(n.Message))
			default:
				m.logger.Debug("silent notice", slog.String("kind", string(n.Kind)), slog.String("message", n.Message))
			}
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m Model) busy() bool {
	for _, p := range m.pages {
		if p.Busy() {
			return true
		}
	}
	return false
}

// spin starts the spinner when a page has work in flight.
func (m *Model) spin() tea.Cmd {
	if m.spinning || !m.busy() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.ready = true
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	for _, p := range m.pages {
		p.SetSize(w, h)
	}
	m.helpView.SetSize(w, h)
	m.taskForm.SetSize(w, h)
	m.sprintForm.SetSize(w, h)
	m.confirm.SetWidth(w)
	m.detail.SetSize(w, h)
	m.palette.SetSize(w, h)
}

// View renders the header, the active page or dialog and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Brainmint", ui.RenderTabs(tabNames, int(m.active)), m.syncStatus())
	return m.layout.RenderWithFrame(header, m.renderContent(), m.layout.RenderStatusBar(m.statusLine(), m.statusNote()))
}

func (m Model) renderContent() string {
	w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
	center := func(s string) string {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, s)
	}

	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayTaskForm:
		return center(m.taskForm.View())
	case overlaySprintForm:
		return center(m.sprintForm.View())
	case overlayConfirm:
		return center(m.confirm.View())
	case overlayDetail:
		return m.detail.View()
	case overlayNotice:
		return center(m.renderNotice())
	case overlayCommand:
		return lipgloss.JoinVertical(lipgloss.Left, m.page().View(), m.palette.View())
	}
	return m.page().View()
}

func (m Model) renderNotice() string {
	title := theme.OverdueStyle.Render(fmt.Sprintf("%s failed", m.notice.Kind))
	return theme.DetailPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.notice.Message,
		"",
		theme.HelpStyle.Render("enter to dismiss"),
	))
}

func (m Model) syncStatus() string {
	status := m.poller.Status()
	label := status.State.String()
	if !status.LastSync.IsZero() {
		label = fmt.Sprintf("%s · %s", label, status.LastSync.Format("15:04"))
	}
	if m.busy() {
		label = m.spinner.View() + " saving · " + label
	}
	return label
}

// statusNote is the right side of the status bar.
func (m Model) statusNote() string {
	tp, ok := m.taskPage()
	if !ok {
		return ""
	}
	if n := len(tp.Coordinator().Selected()); n > 0 {
		return fmt.Sprintf("%d selected", n)
	}
	return ""
}

func (m Model) statusLine() string {
	if m.toast != "" {
		return m.toast
	}
	switch m.overlay {
	case overlayHelp:
		return "? close help | esc back"
	case overlayTaskForm, overlaySprintForm:
		return "enter submit | esc cancel"
	case overlayConfirm:
		return "y/n answer | esc cancel"
	case overlayDetail:
		return "esc back | j/k scroll"
	case overlayCommand:
		return "enter run | esc close"
	case overlayNotice:
		return "enter dismiss"
	}
	return "q quit | : commands | " + m.page().Hints()
}
