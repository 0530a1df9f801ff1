package store

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

const (
	recentActivityLimit = 5
	reportSprintLimit   = 10
	burndownDays        = 7
)

var weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Task type buckets of the sprint report, in display order.
var taskTypes = []struct {
	name     string
	color    string
	keywords []string
}{
	{name: "Features", color: "#7c3aed"},
	{name: "Bugs", color: "#ef4444", keywords: []string{"bug", "fix", "error"}},
	{name: "Tech Debt", color: "#f59e0b", keywords: []string{"refactor", "tech debt", "clean"}},
	{name: "Research", color: "#10b981", keywords: []string{"research", "spike"}},
}

// Summary computes the dashboard summary for the user as of today.
func (s *SQLStore) Summary(ctx context.Context, userID int64, today time.Time) (model.Summary, error) {
	rows, err := s.selectTaskRows(ctx, "t.user_id = ?", userID)
	if err != nil {
		return model.Summary{}, err
	}
	board, err := s.ListSprints(ctx, userID, today)
	if err != nil {
		return model.Summary{}, err
	}
	return buildSummary(rows, board.Sprints, today), nil
}

// SprintReport computes the retrospective report over the user's ten
// newest sprints.
func (s *SQLStore) SprintReport(ctx context.Context, userID int64, today time.Time) (model.SprintReport, error) {
	board, err := s.ListSprints(ctx, userID, today)
	if err != nil {
		return model.SprintReport{}, err
	}
	rows, err := s.selectTaskRows(ctx, "t.user_id = ? AND t.sprint_id IS NOT NULL", userID)
	if err != nil {
		return model.SprintReport{}, err
	}
	return buildSprintReport(board.Sprints, rows, today), nil
}

func buildSummary(rows []taskRow, sprints []model.Sprint, today time.Time) model.Summary {
	today = model.Day(today)
	weekAgo := today.AddDate(0, 0, -7)

	var stats model.SummaryStats
	done := 0
	for _, r := range rows {
		t := r.toTask()
		if t.Status == model.StatusDone {
			done++
			if t.HasDueDate() && !t.DueDate.Before(weekAgo) {
				stats.CompletedThisWeek++
			}
			continue
		}
		if t.Status == model.StatusArchived {
			continue
		}
		stats.OpenTasks++
		if t.HasDueDate() && t.DueDate.Before(today) {
			stats.Overdue++
		}
	}
	for _, sp := range sprints {
		if sp.Covers(today) {
			stats.SprintsActive++
		}
	}
	stats.TotalSprints = len(sprints)
	if len(rows) > 0 {
		stats.CompletionRate = int(roundHalfEven(float64(done)*100/float64(len(rows)), 0))
	}

	recent := slices.Clone(rows)
	slices.SortFunc(recent, func(a, b taskRow) int { return cmp.Compare(b.ID, a.ID) })
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	activity := make([]model.Activity, 0, len(recent))
	for _, r := range recent {
		activity = append(activity, activityFor(r, today))
	}

	return model.Summary{Stats: stats, RecentActivity: activity}
}

func activityFor(r taskRow, today time.Time) model.Activity {
	a := model.Activity{TimeAgo: timeAgo(r.CreatedAt, today)}
	switch model.Status(r.Status) {
	case model.StatusDone:
		a.Message = fmt.Sprintf("Completed %q", r.Title)
		a.Type = model.ActivityCompleted
	case model.StatusProgress:
		a.Message = fmt.Sprintf("Moved %q to In Progress", r.Title)
		a.Type = model.ActivityStatusChange
	default:
		a.Message = fmt.Sprintf("Created task %q", r.Title)
		a.Type = model.ActivityCreated
	}
	return a
}

func timeAgo(created, today time.Time) string {
	if created.IsZero() {
		return "Today"
	}
	days := int(today.Sub(model.Day(created)).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

// roundHalfEven rounds to the given number of decimals with ties to
// even.
func roundHalfEven(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.RoundToEven(v*p) / p
}

func containsAny(title string, keywords []string) bool {
	title = strings.ToLower(title)
	for _, k := range keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

func taskType(title string) int {
	for i, tt := range taskTypes[1:] {
		if containsAny(title, tt.keywords) {
			return i + 1
		}
	}
	return 0
}

func buildSprintReport(sprints []model.Sprint, rows []taskRow, today time.Time) model.SprintReport {
	report := model.SprintReport{
		Historical:       []model.SprintHistory{},
		CurrentBurndown:  []model.BurndownPoint{},
		TaskDistribution: []model.DistributionSlice{},
	}
	if len(sprints) == 0 {
		return report
	}

	newest := slices.Clone(sprints)
	slices.Reverse(newest)
	if len(newest) > reportSprintLimit {
		newest = newest[:reportSprintLimit]
	}

	bySprint := make(map[int64][]taskRow)
	for _, r := range rows {
		if r.SprintID.Valid {
			bySprint[r.SprintID.Int64] = append(bySprint[r.SprintID.Int64], r)
		}
	}

	var (
		totalCommitted, totalCompleted, totalBugs int
		typeCounts                                = make([]int, len(taskTypes))
		current                                   = -1
	)
	for _, sp := range newest {
		h := model.SprintHistory{Name: sp.Title, IsCurrent: sp.Covers(today)}
		techDebt := 0
		for _, r := range bySprint[sp.ID] {
			h.Committed++
			if model.Status(r.Status) == model.StatusDone {
				h.Completed++
			} else if model.Priority(r.Priority) == model.PriorityHigh {
				h.Bugs++
			}
			if containsAny(r.Title, []string{"refactor", "tech debt"}) {
				techDebt++
			}
			typeCounts[taskType(r.Title)]++
		}
		h.TechDebt = roundHalfEven(float64(techDebt)/float64(max(h.Committed, 1))*100, 1)

		totalCommitted += h.Committed
		totalCompleted += h.Completed
		totalBugs += h.Bugs
		report.Historical = append(report.Historical, h)
		if h.IsCurrent && current < 0 {
			current = len(report.Historical) - 1
		}
	}

	var cur *model.SprintHistory
	if current >= 0 {
		cur = &report.Historical[current]
	}
	report.CurrentBurndown = burndown(cur)
	report.TaskDistribution = distribution(typeCounts)
	report.Summary = model.ReportSummary{
		AvgVelocity: int(roundHalfEven(float64(totalCompleted)/float64(len(report.Historical)), 0)),
		TotalTasks:  totalCommitted,
		BugRatio:    roundHalfEven(float64(totalBugs)/float64(max(totalCommitted, 1))*100, 1),
	}
	if totalCommitted > 0 {
		report.Summary.CompletionRate = int(roundHalfEven(float64(totalCompleted)*100/float64(totalCommitted), 0))
	}
	return report
}

// burndown is a linear ideal line against a remaining line that burns
// 70% of the open work over the week. Without a current sprint every
// point is zero.
func burndown(current *model.SprintHistory) []model.BurndownPoint {
	points := make([]model.BurndownPoint, 0, burndownDays+1)
	for i := 0; i <= burndownDays; i++ {
		p := model.BurndownPoint{Day: weekdays[i%len(weekdays)]}
		if current != nil && current.Committed > 0 {
			frac := float64(i) / burndownDays
			remaining := float64(current.Committed - current.Completed)
			p.Ideal = int(roundHalfEven(max(0, float64(current.Committed)*(1-frac)), 0))
			p.Remaining = int(roundHalfEven(max(0, remaining-remaining*frac*0.7), 0))
		}
		points = append(points, p)
	}
	return points
}

func distribution(counts []int) []model.DistributionSlice {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return []model.DistributionSlice{{Name: taskTypes[0].name, Value: 100, Color: taskTypes[0].color}}
	}
	var out []model.DistributionSlice
	for i, n := range counts {
		if n == 0 {
			continue
		}
		out = append(out, model.DistributionSlice{
			Name:  taskTypes[i].name,
			Value: int(roundHalfEven(float64(n)*100/float64(total), 0)),
			Color: taskTypes[i].color,
		})
	}
	return out
}
