// Package view derives page-shaped projections from a flat task list.
// Every function returns fresh slices and leaves its input untouched.
package view

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/brainmint/internal/model"
)

// Columns is the kanban partition of a task list.
type Columns struct {
	Todo     []model.Task
	Progress []model.Task
	Review   []model.Task
	Done     []model.Task
}

// Get returns the column for status, or nil for a non-board status.
func (c Columns) Get(status model.Status) []model.Task {
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
	return nil
}

// Len returns the total number of tasks across all columns.
func (c Columns) Len() int {
	return len(c.Todo) + len(c.Progress) + len(c.Review) + len(c.Done)
}

// GroupByStatus partitions tasks into board columns, keeping the
// relative order within each column. Tasks with any other status are
// dropped.
func GroupByStatus(tasks []model.Task) Columns {
	var cols Columns
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			cols.Todo = append(cols.Todo, t)
		case model.StatusProgress:
			cols.Progress = append(cols.Progress, t)
		case model.StatusReview:
			cols.Review = append(cols.Review, t)
		case model.StatusDone:
			cols.Done = append(cols.Done, t)
		}
	}
	return cols
}

type sprintMode int

const (
	sprintAny sprintMode = iota
	sprintNone
	sprintID
)

// SprintFilter selects tasks by sprint membership. The zero value
// matches every task.
type SprintFilter struct {
	mode sprintMode
	id   int64
}

// AnySprint matches every task.
func AnySprint() SprintFilter { return SprintFilter{} }

// NoSprint matches backlog tasks only.
func NoSprint() SprintFilter { return SprintFilter{mode: sprintNone} }

// InSprint matches tasks assigned to sprint id.
func InSprint(id int64) SprintFilter { return SprintFilter{mode: sprintID, id: id} }

// ParseSprintFilter accepts "", "all", "none" or a numeric sprint id.
func ParseSprintFilter(s string) (SprintFilter, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "all":
		return AnySprint(), nil
	case "none":
		return NoSprint(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return SprintFilter{}, &model.ValidationError{
			Field:   "sprint",
			Message: fmt.Sprintf("expected none, all or a sprint id, got %q", s),
		}
	}
	return InSprint(id), nil
}

// Match reports whether t passes the filter.
func (f SprintFilter) Match(t model.Task) bool {
	switch f.mode {
	case sprintNone:
		return t.SprintID == nil
	case sprintID:
		return t.SprintID != nil && *t.SprintID == f.id
	}
	return true
}

func (f SprintFilter) String() string {
	switch f.mode {
	case sprintNone:
		return "none"
	case sprintID:
		return strconv.FormatInt(f.id, 10)
	}
	return "all"
}

// Criteria are ANDed task predicates. Empty fields match everything.
type Criteria struct {
	Search   string
	Priority model.Priority
	Status   model.Status
	Sprint   SprintFilter
}

// IsZero reports whether the criteria match every task.
func (c Criteria) IsZero() bool {
	return c.Search == "" && c.Priority == "" &&
		c.Status == "" && c.Sprint.mode == sprintAny
}

// Filter returns the tasks matching every predicate in c. Search is a
// case-insensitive substring match on the title. The query is not
// trimmed, so surrounding spaces take part in the match.
func Filter(tasks []model.Task, c Criteria) []model.Task {
	query := strings.ToLower(c.Search)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if query != "" && !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if c.Priority != "" && t.Priority != c.Priority {
			continue
		}
		if c.Status != "" && t.Status != c.Status {
			continue
		}
		if !c.Sprint.Match(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SortKey names a sortable task attribute.
type SortKey string

const (
	SortTitle    SortKey = "title"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
	SortStatus   SortKey = "status"
	SortSprint   SortKey = "sprint"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortTitle, SortPriority, SortDueDate, SortStatus, SortSprint:
		return k, nil
	}
	return "", &model.ValidationError{
		Field:   "sort",
		Message: fmt.Sprintf("unknown sort key %q", s),
	}
}

// Direction is the sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// maxDate stands in for a missing due date so it sorts last ascending.
var maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func dueOrMax(t model.Task) time.Time {
	if t.HasDueDate() {
		return model.Day(*t.DueDate)
	}
	return maxDate
}

func compareBy(key SortKey) func(a, b model.Task) int {
	switch key {
	case SortPriority:
		return func(a, b model.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case SortDueDate:
		return func(a, b model.Task) int {
			return dueOrMax(a).Compare(dueOrMax(b))
		}
	case SortStatus:
		return func(a, b model.Task) int {
			return a.Status.Index() - b.Status.Index()
		}
	case SortSprint:
		return func(a, b model.Task) int {
			switch {
			case a.InBacklog() && b.InBacklog():
				return 0
			case a.InBacklog():
				return 1
			case b.InBacklog():
				return -1
			}
			return strings.Compare(strings.ToLower(a.SprintName), strings.ToLower(b.SprintName))
		}
	default:
		return func(a, b model.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	}
}

// Sort returns a stably sorted copy of tasks. Equal keys keep their
// input order in both directions.
func Sort(tasks []model.Task, key SortKey, dir Direction) []model.Task {
	out := slices.Clone(tasks)
	cmp := compareBy(key)
	if dir == Desc {
		asc := cmp
		cmp = func(a, b model.Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Page is one slice of a paginated list.
type Page struct {
	Items      []model.Task
	Page       int
	PerPage    int
	TotalPages int
	TotalItems int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// Paginate returns the 1-based page of tasks. The page number is
// clamped into range and an empty list still has one (empty) page.
func Paginate(tasks []model.Task, page, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	total := len(tasks)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	items := []model.Task{}
	if start < end {
		items = slices.Clone(tasks[start:end])
	}

	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalPages: pages,
		TotalItems: total,
	}
}
