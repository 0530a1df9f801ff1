package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/brainmint/internal/theme"
)

// Layout splits the terminal into a header row, the page area and a
// status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout returns a Layout for a terminal of the given size with
// one-line header and status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth is the page width. Pages span the terminal.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(0, l.Height-l.HeaderHeight-l.StatusBarHeight)
}

// RenderTabs renders page tabs, numbered from 1, with active highlighted.
func RenderTabs(names []string, active int) string {
	parts := make([]string, 0, len(names))
	for i, name := range names {
		label := string(rune('1'+i)) + " " + name
		if i == active {
			parts = append(parts, theme.ActiveTabStyle.Render(label))
			continue
		}
		parts = append(parts, theme.TabStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderHeader renders the top header bar with the title, page tabs
// and sync status.
func (l Layout) RenderHeader(title, tabs, syncStatus string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.Render(syncStatus)

	gap := max(l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(tabs)-lipgloss.Width(statusRendered)-1, 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, " ", tabs, filler, statusRendered)
}

// RenderStatusBar renders the bottom bar: hints on the left and an
// optional note, such as the selection count, on the right.
func (l Layout) RenderStatusBar(hints, note string) string {
	right := ""
	if note != "" {
		right = theme.StatusBarStyle.Render(note)
	}
	left := theme.StatusBarStyle.Render(
		Truncate(hints, max(l.Width-lipgloss.Width(right)-2, 0)),
	)

	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// Fit clips content to the content area and pads it so the status bar
// stays on the last line.
func (l Layout) Fit(content string) string {
	h := l.ContentHeight()
	lines := strings.Split(content, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// RenderWithFrame stacks the header, the fitted content and the status
// bar into one screen.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, l.Fit(content), statusBar)
}

// Truncate shortens s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + "…"
}
