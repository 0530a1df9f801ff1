package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorViolet  = lipgloss.AdaptiveColor{Dark: "#9F7AEA", Light: "#7C3AED"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorViolet).
	Padding(0, 1)

// TabStyle renders an inactive page tab in the header.
var TabStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorViolet).
	Padding(0, 1)

// ActiveTabStyle renders the open page tab.
var ActiveTabStyle = TabStyle.
	Bold(true).
	Underline(true)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps overlay content such as help and forms.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ColumnStyle frames one kanban column.
var ColumnStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// FocusedColumnStyle frames the column holding the cursor.
var FocusedColumnStyle = ColumnStyle.
	BorderForeground(ColorViolet)

// DropTargetStyle frames the column a dragged card hovers over.
var DropTargetStyle = ColumnStyle.
	BorderForeground(ColorYellow).
	BorderStyle(lipgloss.DoubleBorder())

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorViolet).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorViolet)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// OverdueStyle marks due dates in the past.
var OverdueStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// DueDateStyle renders upcoming due dates.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ToastStyle renders transient failure notices in the status bar.
var ToastStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorOrange).
	Padding(0, 1)

// BlockingStyle renders a notice that must be dismissed.
var BlockingStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.ThickBorder()).
	BorderForeground(ColorRed).
	Foreground(ColorRed)

// TodayStyle highlights today's cell on the calendar.
var TodayStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorViolet)

// BarStyle fills chart bars on the Sprints page.
var BarStyle = lipgloss.NewStyle().
	Foreground(ColorViolet)

// DoneBarStyle fills the completed share of a chart bar.
var DoneBarStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// StatusStyle returns a color-coded style for a board column.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusTodo:
		return base.Foreground(ColorBlue)
	case model.StatusProgress:
		return base.Foreground(ColorYellow)
	case model.StatusReview:
		return base.Foreground(ColorMagenta)
	case model.StatusDone:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorGray)
	}
}

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(priority model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch priority {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// HealthStyle colors the backlog health band.
func HealthStyle(band string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch band {
	case "high":
		return base.Foreground(ColorRed)
	case "moderate":
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGreen)
	}
}
