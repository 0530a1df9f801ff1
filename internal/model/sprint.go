package model

import (
	"fmt"
	"strings"
	"time"
)

// Sprint limits for the setup flow.
const (
	MinSprints = 1
	MaxSprints = 20

	DefaultProjectTitle = "My Project"
)

// Sprint is a planning period. TaskCount and CompletedCount are
// computed by the server from member tasks.
type Sprint struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	TaskCount      int        `json:"task_count"`
	CompletedCount int        `json:"completed_count"`
}

// HasValidDates reports whether both dates are set and end >= start.
func (s Sprint) HasValidDates() bool {
	return s.StartDate != nil && s.EndDate != nil &&
		!s.EndDate.Before(*s.StartDate)
}

// Covers reports whether day falls within the sprint, inclusive.
func (s Sprint) Covers(day time.Time) bool {
	if s.StartDate == nil || s.EndDate == nil {
		return false
	}
	d := Day(day)
	return !d.Before(Day(*s.StartDate)) && !d.After(Day(*s.EndDate))
}

// SprintBoard is the sprint listing for one user.
type SprintBoard struct {
	Sprints      []Sprint `json:"sprints"`
	ProjectTitle string   `json:"project_title"`
	Current      *Sprint  `json:"current_sprint,omitempty"`
}

// SprintSpec is one row of the sprint setup form.
type SprintSpec struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
}

// SprintPlan is the full input of the sprint setup flow. Submitting a
// plan replaces every sprint the user already has.
type SprintPlan struct {
	UserID       int64
	ProjectTitle string
	Sprints      []SprintSpec
}

// Validate applies the setup-flow defaults and rejects plans the
// server would refuse.
func (p *SprintPlan) Validate() error {
	if p.UserID <= 0 {
		return &ValidationError{Field: "user_id", Message: "a user is required"}
	}
	if len(p.Sprints) < MinSprints || len(p.Sprints) > MaxSprints {
		return &ValidationError{
			Field: "sprints",
			Message: fmt.Sprintf(
				"between %d and %d sprints required, got %d",
				MinSprints, MaxSprints, len(p.Sprints),
			),
		}
	}

	p.ProjectTitle = strings.TrimSpace(p.ProjectTitle)
	if p.ProjectTitle == "" {
		p.ProjectTitle = DefaultProjectTitle
	}

	for i := range p.Sprints {
		s := &p.Sprints[i]
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			s.Title = fmt.Sprintf("Sprint %d", i+1)
		}
		if s.StartDate.IsZero() || s.EndDate.IsZero() {
			return &ValidationError{
				Field:   "sprints",
				Message: fmt.Sprintf("%s needs a start and end date", s.Title),
			}
		}
		if s.EndDate.Before(s.StartDate) {
			return &ValidationError{
				Field:   "sprints",
				Message: fmt.Sprintf("%s ends before it starts", s.Title),
			}
		}
	}
	return nil
}

// ClampSprintCount bounds a requested sprint count to the setup limits.
func ClampSprintCount(n int) int {
	if n < MinSprints {
		return MinSprints
	}
	if n > MaxSprints {
		return MaxSprints
	}
	return n
}
