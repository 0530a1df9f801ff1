package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayoutFitPadsAndClips(t *testing.T) {
	l := NewLayout(40, 5)
	assert.Equal(t, 3, l.ContentHeight())

	assert.Equal(t, "a\n\n", l.Fit("a"))
	assert.Equal(t, "1\n2\n3", l.Fit("1\n2\n3\n4\n5"))

	frame := l.RenderWithFrame("head", "body", "foot")
	assert.Len(t, strings.Split(frame, "\n"), 5)
}

func TestLayoutBarsSpanWidth(t *testing.T) {
	l := NewLayout(60, 10)

	bar := l.RenderStatusBar("q quit", "2 selected")
	assert.Equal(t, 60, lipgloss.Width(bar))
	assert.Contains(t, bar, "2 selected")

	header := l.RenderHeader("Brainmint", RenderTabs([]string{"Board", "Backlog"}, 0), "synced")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "1 Board")
	assert.Contains(t, header, "2 Backlog")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long…", Truncate("long title", 5))
	assert.Equal(t, "", Truncate("x", 0))
}
