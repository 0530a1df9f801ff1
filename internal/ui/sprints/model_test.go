package sprints

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/testutil"
	"github.com/nhle/brainmint/internal/ui/uitest"
	"github.com/nhle/brainmint/internal/view"
)

func TestSprintsPageStatsAndReport(t *testing.T) {
	deps, ts := uitest.Deps(t)
	today := model.Day(time.Now())
	sb := testutil.SeedSprints(t, ts.Store, uitest.UserID, today, "Sprint 1", "Sprint 2")
	id := sb.Sprints[0].ID
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: uitest.UserID, Title: "Planned", SprintID: &id, Status: model.StatusDone})
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: uitest.UserID, Title: "Open", SprintID: &id})
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: uitest.UserID, Title: "Loose"})

	m := New(deps)
	uitest.Load(t, m)

	stats := m.Stats()
	assert.Equal(t, 28, stats.TotalProjectDays)
	assert.InDelta(t, 14.0, stats.AvgSprintDays, 0.001)
	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.BacklogCount)
	assert.Equal(t, 33, stats.BacklogPct)
	assert.Equal(t, view.BacklogHigh, stats.Health())
	assert.Equal(t, 1, stats.ActiveTasks)

	require.NotNil(t, m.summary)
	require.NotNil(t, m.report)
	assert.Equal(t, 2, m.summary.Stats.TotalSprints)

	out := m.View()
	assert.Contains(t, out, "Test Project")
	assert.Contains(t, out, "Sprint durations")
	assert.Contains(t, out, "Sprint report")
}

func TestSprintsPageSetupAndReset(t *testing.T) {
	deps, _ := uitest.Deps(t)
	m := New(deps)
	uitest.Load(t, m)
	assert.Contains(t, m.View(), "No sprints yet")

	start := model.Day(time.Now())
	cmd, err := m.Coordinator().SetupSprints(model.SprintPlan{
		ProjectTitle: "Launch",
		Sprints: []model.SprintSpec{
			{StartDate: start, EndDate: start.AddDate(0, 0, 6)},
		},
	})
	require.NoError(t, err)
	uitest.Settle(t, m, cmd)

	require.Len(t, m.Coordinator().Collection().Sprints(), 1)
	assert.Equal(t, "Sprint 1", m.Coordinator().Collection().Sprints()[0].Title)
	assert.Equal(t, 1, m.summary.Stats.TotalSprints)

	uitest.Settle(t, m, m.Coordinator().ResetProject())
	assert.Empty(t, m.Coordinator().Collection().Sprints())
	assert.Equal(t, 0, m.summary.Stats.TotalSprints)
}

func TestStaleReportIsDropped(t *testing.T) {
	deps, _ := uitest.Deps(t)
	m := New(deps)
	m.seq = 3

	m.Update(ReportLoadedMsg{Seq: 2, Summary: &model.Summary{}})
	assert.Nil(t, m.summary)

	m.Update(ReportLoadedMsg{Seq: 3, Summary: &model.Summary{}})
	assert.NotNil(t, m.summary)
}

func TestRenderChartScalesToLongest(t *testing.T) {
	out := renderChart([]view.ChartPoint{
		{Name: "Long", Duration: 20, Tasks: 4, Done: 2},
		{Name: "Short", Duration: 10, Tasks: 0},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, barWidth, strings.Count(lines[1], "█"))
	assert.Equal(t, barWidth/2, strings.Count(lines[2], "█"))
}
