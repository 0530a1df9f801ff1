// Package sprints is the Sprints tab: timeline statistics, the sprint
// duration chart and the server-side summary and sprint report.
package sprints

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sourcegraph/conc"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/theme"
	"github.com/nhle/brainmint/internal/ui"
	"github.com/nhle/brainmint/internal/view"
)

const (
	reportTimeout     = 30 * time.Second
	defaultReportRows = 8
	barWidth          = 30
)

// ReportLoadedMsg carries the summary and sprint report.
type ReportLoadedMsg struct {
	Seq     uint64
	Summary *model.Summary
	Report  *model.SprintReport
	Err     error
}

// Model is the Sprints page.
type Model struct {
	deps    ui.Deps
	coord   *board.Coordinator
	notices ui.Notices
	logger  *slog.Logger

	seq     uint64
	summary *model.Summary
	report  *model.SprintReport

	width  int
	height int
}

var _ ui.TaskPage = (*Model)(nil)

// New creates the Sprints page.
func New(deps ui.Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		deps:   deps,
		coord:  board.NewCoordinator(deps.Store, deps.UserID, board.WithLogger(logger)),
		logger: logger,
	}
}

func (m *Model) Init() tea.Cmd                    { return m.Reload() }
func (m *Model) Leave()                           {}
func (m *Model) Capturing() bool                  { return false }
func (m *Model) Busy() bool                       { return m.coord.Busy() }
func (m *Model) Coordinator() *board.Coordinator  { return m.coord }
func (m *Model) Focused() (model.Task, bool)      { return model.Task{}, false }
func (m *Model) TakeNotice() (board.Notice, bool) { return m.notices.Take(m.coord.TakeNotice) }

// SetSize updates the page dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Hints returns the status bar shortcuts.
func (m *Model) Hints() string {
	return "S set up sprints · R reset project · r refresh · ? help"
}

// Reload refetches the board and the report.
func (m *Model) Reload() tea.Cmd {
	return tea.Batch(m.coord.Reload(), m.loadReport())
}

// loadReport fetches the summary and sprint report concurrently.
func (m *Model) loadReport() tea.Cmd {
	m.seq++
	seq, store, userID := m.seq, m.deps.Store, m.deps.UserID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		var (
			wg        conc.WaitGroup
			summary   *model.Summary
			report    *model.SprintReport
			sumErr    error
			reportErr error
		)
		wg.Go(func() { summary, sumErr = store.GetSummary(ctx, userID) })
		wg.Go(func() { report, reportErr = store.GetSprintReport(ctx, userID) })
		wg.Wait()

		err := sumErr
		if err == nil {
			err = reportErr
		}
		return ReportLoadedMsg{Seq: seq, Summary: summary, Report: report, Err: err}
	}
}

// Update handles coordinator and report messages.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if cmd, ok := m.coord.Handle(msg); ok {
		if res, isResult := msg.(board.MutationResultMsg); isResult && res.Err == nil &&
			(res.Kind == board.KindSetupSprints || res.Kind == board.KindReset) {
			return tea.Batch(cmd, m.loadReport())
		}
		return cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if !key.Matches(keyMsg, m.deps.Keys.ResetProject) {
			return nil
		}
		cmd, kind, _, err := ui.HandleBulkKey(m.deps.Keys, m.coord, nil, keyMsg)
		m.notices.Fail(kind, err)
		return cmd
	}

	if msg, ok := msg.(ReportLoadedMsg); ok {
		if msg.Seq != m.seq {
			return nil
		}
		if msg.Err != nil {
			m.logger.Warn("sprint report load failed", slog.String("error", msg.Err.Error()))
			m.notices.Fail(board.KindLoad, msg.Err)
		}
		if msg.Summary != nil {
			m.summary = msg.Summary
		}
		if msg.Report != nil {
			m.report = msg.Report
		}
	}
	return nil
}

// Stats derives the timeline statistics from the loaded board.
func (m *Model) Stats() view.SprintStats {
	coll := m.coord.Collection()
	tasks := coll.Tasks()
	return view.ComputeSprintStats(
		coll.Sprints(),
		coll.CurrentSprint(),
		len(view.BacklogTasks(tasks)),
		len(tasks),
	)
}

// View renders the statistics, chart, summary and report.
func (m *Model) View() string {
	if !m.coord.Loaded() {
		if err := m.coord.LoadErr(); err != nil {
			return theme.OverdueStyle.Render("Could not load sprints: " + err.Error())
		}
		return theme.DimmedStyle.Render("Loading sprints…")
	}

	coll := m.coord.Collection()
	if len(coll.Sprints()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.HeaderStyle.Render(coll.ProjectTitle()),
			"",
			"No sprints yet.",
			theme.HelpStyle.Render("Press S to plan your sprints."),
		)
	}

	stats := m.Stats()
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeadline(coll, stats),
		"",
		renderChart(stats.ChartSeries),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderSummary(),
		"",
		m.renderReport(),
	)

	half := max(m.width/2-2, 30)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(left),
		lipgloss.NewStyle().Width(half).PaddingLeft(2).Render(right),
	)
}

func (m *Model) renderHeadline(coll *board.Collection, stats view.SprintStats) string {
	current := "none"
	if cur := coll.CurrentSprint(); cur != nil {
		current = cur.Title
	}
	health := stats.Health()

	lines := []string{
		theme.HeaderStyle.Render(coll.ProjectTitle()),
		fmt.Sprintf("Active sprint:   %s (%d open)", current, stats.ActiveTasks),
		fmt.Sprintf("Project length:  %d days", stats.TotalProjectDays),
		fmt.Sprintf("Average sprint:  %.1f days", stats.AvgSprintDays),
		fmt.Sprintf("Sprint progress: %d%% (%d/%d)",
			stats.SprintCompletionPct, stats.CompletedSprintTasks, stats.TotalSprintTasks),
		fmt.Sprintf("Backlog:         %d of %d tasks, %s",
			stats.BacklogCount, stats.TotalTasks,
			theme.HealthStyle(string(health)).Render(fmt.Sprintf("%d%% %s", stats.BacklogPct, health))),
	}
	return strings.Join(lines, "\n")
}

// renderChart draws one bar per sprint scaled to the longest sprint,
// with the completed share in the done color.
func renderChart(series []view.ChartPoint) string {
	longest := 1
	nameWidth := 6
	for _, p := range series {
		longest = max(longest, p.Duration)
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
	}
	nameWidth = min(nameWidth, 16)

	lines := []string{theme.DimmedStyle.Render("Sprint durations")}
	for _, p := range series {
		length := p.Duration * barWidth / longest
		if p.Duration > 0 {
			length = max(length, 1)
		}
		done := 0
		if p.Tasks > 0 {
			done = length * p.Done / p.Tasks
		}
		bar := theme.DoneBarStyle.Render(strings.Repeat("█", done)) +
			theme.BarStyle.Render(strings.Repeat("█", length-done))
		lines = append(lines, fmt.Sprintf("%-*s %s %dd %d/%d",
			nameWidth, ui.Truncate(p.Name, nameWidth), bar, p.Duration, p.Done, p.Tasks))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSummary() string {
	if m.summary == nil {
		return theme.DimmedStyle.Render("Loading summary…")
	}
	s := m.summary.Stats
	lines := []string{
		theme.HeaderStyle.Render("Summary"),
		fmt.Sprintf("Open %d · Overdue %s · Done this week %d",
			s.OpenTasks, theme.OverdueStyle.Render(fmt.Sprint(s.Overdue)), s.CompletedThisWeek),
		fmt.Sprintf("Sprints %d (%d active) · Completion %d%%",
			s.TotalSprints, s.SprintsActive, s.CompletionRate),
	}
	for _, a := range m.summary.RecentActivity {
		lines = append(lines, theme.DimmedStyle.Render("• ")+a.Message+" "+theme.DimmedStyle.Render(a.TimeAgo))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderReport() string {
	if m.report == nil {
		return ""
	}
	rows := m.deps.PageSize
	if rows <= 0 {
		rows = defaultReportRows
	}

	lines := []string{
		theme.HeaderStyle.Render("Sprint report"),
		theme.DimmedStyle.Render(fmt.Sprintf("%-14s %5s %5s %4s %6s", "Sprint", "Plan", "Done", "Bugs", "Debt")),
	}
	for i, h := range m.report.Historical {
		if i == rows {
			break
		}
		name := ui.Truncate(h.Name, 14)
		if h.IsCurrent {
			name = ui.Truncate("▸"+h.Name, 14)
		}
		lines = append(lines, fmt.Sprintf("%-14s %5d %5d %4d %5.1f%%",
			name, h.Committed, h.Completed, h.Bugs, h.TechDebt))
	}

	sum := m.report.Summary
	lines = append(lines, "", fmt.Sprintf(
		"Velocity %d · Completion %d%% · Tasks %d · Bug ratio %.1f%%",
		sum.AvgVelocity, sum.CompletionRate, sum.TotalTasks, sum.BugRatio,
	))

	if len(m.report.TaskDistribution) > 0 {
		parts := make([]string, 0, len(m.report.TaskDistribution))
		for _, d := range m.report.TaskDistribution {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color))
			parts = append(parts, style.Render("■")+fmt.Sprintf(" %s %d%%", d.Name, d.Value))
		}
		lines = append(lines, strings.Join(parts, "  "))
	}

	if len(m.report.CurrentBurndown) > 0 {
		lines = append(lines, "", theme.DimmedStyle.Render("Burndown (ideal/remaining)"))
		for _, p := range m.report.CurrentBurndown {
			lines = append(lines, fmt.Sprintf("%-4s %3d %3d", p.Day, p.Ideal, p.Remaining))
		}
	}
	return strings.Join(lines, "\n")
}
