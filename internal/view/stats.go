package view

import (
	"math"
	"slices"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

const day = 24 * time.Hour

// ChartPoint is one bar of the sprint duration chart.
type ChartPoint struct {
	Name     string
	Duration int
	Tasks    int
	Done     int
}

// BacklogHealth buckets the backlog share of all tasks.
type BacklogHealth string

const (
	BacklogHealthy  BacklogHealth = "healthy"
	BacklogModerate BacklogHealth = "moderate"
	BacklogHigh     BacklogHealth = "high"
)

// SprintStats are the aggregates shown on the Sprints page.
type SprintStats struct {
	TotalProjectDays     int
	AvgSprintDays        float64
	SprintCompletionPct  int
	BacklogPct           int
	BacklogCount         int
	TotalTasks           int
	TotalSprintTasks     int
	CompletedSprintTasks int
	ActiveTasks          int
	ChartSeries          []ChartPoint
}

// Health classifies BacklogPct: above 25 is high, above 10 moderate.
func (s SprintStats) Health() BacklogHealth {
	switch {
	case s.BacklogPct > 25:
		return BacklogHigh
	case s.BacklogPct > 10:
		return BacklogModerate
	}
	return BacklogHealthy
}

// SprintDuration is the inclusive length of a sprint in days, or 0
// when either date is missing or the sprint ends before it starts.
func SprintDuration(s model.Sprint) int {
	if !s.HasValidDates() {
		return 0
	}
	return spanDays(*s.StartDate, *s.EndDate)
}

func spanDays(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start))/float64(day))) + 1
}

// percent returns round(num/den*100), or 0 for an empty denominator.
func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(float64(num) * 100 / float64(den)))
}

// ComputeSprintStats aggregates sprint durations and completion. It
// never divides by zero: empty inputs produce zeros.
func ComputeSprintStats(sprints []model.Sprint, current *model.Sprint, backlogCount, totalTasks int) SprintStats {
	stats := SprintStats{
		BacklogCount: backlogCount,
		TotalTasks:   totalTasks,
		BacklogPct:   percent(backlogCount, totalTasks),
		ChartSeries:  make([]ChartPoint, 0, len(sprints)),
	}

	var (
		totalDays        int
		earliest, latest time.Time
	)
	for _, s := range sprints {
		duration := SprintDuration(s)
		if duration > 0 {
			totalDays += duration
			if earliest.IsZero() || s.StartDate.Before(earliest) {
				earliest = *s.StartDate
			}
			if latest.IsZero() || s.EndDate.After(latest) {
				latest = *s.EndDate
			}
		}

		stats.TotalSprintTasks += s.TaskCount
		stats.CompletedSprintTasks += s.CompletedCount
		stats.ChartSeries = append(stats.ChartSeries, ChartPoint{
			Name:     s.Title,
			Duration: duration,
			Tasks:    s.TaskCount,
			Done:     s.CompletedCount,
		})
	}

	if !earliest.IsZero() && !latest.Before(earliest) {
		stats.TotalProjectDays = spanDays(earliest, latest)
	}
	if len(sprints) > 0 {
		stats.AvgSprintDays = math.Round(float64(totalDays)/float64(len(sprints))*10) / 10
	}
	stats.SprintCompletionPct = percent(stats.CompletedSprintTasks, stats.TotalSprintTasks)

	if current != nil {
		stats.ActiveTasks = max(current.TaskCount-current.CompletedCount, 0)
	}
	return stats
}

// BucketByCalendarDay groups tasks by due date (YYYY-MM-DD). Tasks
// without a due date are left out.
func BucketByCalendarDay(tasks []model.Task) map[string][]model.Task {
	buckets := make(map[string][]model.Task)
	for _, t := range tasks {
		key := t.DueKey()
		if key == "" {
			continue
		}
		buckets[key] = append(buckets[key], t)
	}
	return buckets
}

// CalendarCell is one day of a month grid. Days outside the month
// have a zero Date.
type CalendarCell struct {
	Date  time.Time
	Tasks []model.Task
}

// InMonth reports whether the cell belongs to the displayed month.
func (c CalendarCell) InMonth() bool { return !c.Date.IsZero() }

// MonthGrid lays out a month as Sunday-first weeks of seven cells,
// filling each day from buckets.
func MonthGrid(year int, month time.Month, buckets map[string][]model.Task) [][]CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())

	var (
		weeks [][]CalendarCell
		week  []CalendarCell
	)
	for range lead {
		week = append(week, CalendarCell{})
	}
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		week = append(week, CalendarCell{
			Date:  date,
			Tasks: slices.Clone(buckets[date.Format(model.DateLayout)]),
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, CalendarCell{})
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// BacklogTasks returns the tasks with no sprint.
func BacklogTasks(tasks []model.Task) []model.Task {
	return Filter(tasks, Criteria{Sprint: NoSprint()})
}

// StatusCounts tallies tasks per board column.
type StatusCounts struct {
	Todo     int
	Progress int
	Review   int
	Done     int
	Total    int
}

// Get returns the count for status.
func (c StatusCounts) Get(status model.Status) int {
	switch status {
	case model.StatusTodo:
		return c.Todo
	case model.StatusProgress:
		return c.Progress
	case model.StatusReview:
		return c.Review
	case model.StatusDone:
		return c.Done
	}
	return 0
}

// CompletionPct is the share of done tasks, 0 when empty.
func (c StatusCounts) CompletionPct() int {
	return percent(c.Done, c.Total)
}

// Counts tallies tasks per column.
func Counts(tasks []model.Task) StatusCounts {
	var c StatusCounts
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			c.Todo++
		case model.StatusProgress:
			c.Progress++
		case model.StatusReview:
			c.Review++
		case model.StatusDone:
			c.Done++
		default:
			continue
		}
		c.Total++
	}
	return c
}

// OverdueTasks returns unfinished tasks due strictly before today.
func OverdueTasks(tasks []model.Task, today time.Time) []model.Task {
	today = model.Day(today)
	var out []model.Task
	for _, t := range tasks {
		if t.Status == model.StatusDone || !t.HasDueDate() {
			continue
		}
		if model.Day(*t.DueDate).Before(today) {
			out = append(out, t)
		}
	}
	return out
}
