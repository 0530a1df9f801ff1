package model

import "time"

// SummaryStats are the headline numbers on the dashboard summary.
type SummaryStats struct {
	OpenTasks         int `json:"open_tasks"`
	Overdue           int `json:"overdue"`
	SprintsActive     int `json:"sprints_active"`
	CompletedThisWeek int `json:"completed_this_week"`
	TotalSprints      int `json:"total_sprints"`
	CompletionRate    int `json:"completion_rate"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Message string `json:"message"`
	TimeAgo string `json:"time_ago"`
	Type    string `json:"type"`
}

// Activity types.
const (
	ActivityCompleted    = "completed"
	ActivityStatusChange = "status_change"
	ActivityCreated      = "created"
)

// Summary is the /summary/ payload.
type Summary struct {
	Stats          SummaryStats `json:"stats"`
	RecentActivity []Activity   `json:"recent_activity"`
}

// SprintHistory is one sprint's row in the sprint report.
type SprintHistory struct {
	Name      string  `json:"name"`
	Committed int     `json:"committed"`
	Completed int     `json:"completed"`
	Bugs      int     `json:"bugs"`
	TechDebt  float64 `json:"techDebt"`
	IsCurrent bool    `json:"is_current"`
}

// BurndownPoint is one day of the current sprint burndown.
type BurndownPoint struct {
	Day       string `json:"day"`
	Ideal     int    `json:"ideal"`
	Remaining int    `json:"remaining"`
}

// DistributionSlice is one segment of the task-type breakdown.
type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// ReportSummary aggregates across reported sprints.
type ReportSummary struct {
	AvgVelocity    int     `json:"avg_velocity"`
	CompletionRate int     `json:"completion_rate"`
	TotalTasks     int     `json:"total_tasks"`
	BugRatio       float64 `json:"bug_ratio"`
}

// SprintReport is the /sprint-report/ payload.
type SprintReport struct {
	Historical       []SprintHistory     `json:"historical"`
	CurrentBurndown  []BurndownPoint     `json:"current_burndown"`
	TaskDistribution []DistributionSlice `json:"task_distribution"`
	Summary          ReportSummary       `json:"summary"`
}

// Page is a free-form notes page.
type Page struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// User is the canonical identity shape: {id, full_name}.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}
