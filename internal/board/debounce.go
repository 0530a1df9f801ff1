package board

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDebounce is the search input delay.
const DefaultDebounce = 300 * time.Millisecond

var lastDebouncerID atomic.Int64

// DebounceMsg fires when a debounce delay elapses.
type DebounceMsg struct {
	ID    int64
	Tag   int
	Value string
}

// Debouncer delays a value until input has been quiet for the delay.
// Each Trigger supersedes the previous one.
type Debouncer struct {
	id    int64
	tag   int
	delay time.Duration
}

// NewDebouncer creates a debouncer. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{id: lastDebouncerID.Add(1), delay: delay}
}

// Trigger restarts the delay for value.
func (d *Debouncer) Trigger(value string) tea.Cmd {
	d.tag++
	id, tag := d.id, d.tag
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg{ID: id, Tag: tag, Value: value}
	})
}

// Accept returns the value of msg if it belongs to this debouncer and
// no later Trigger or Cancel has happened.
func (d *Debouncer) Accept(msg DebounceMsg) (string, bool) {
	if msg.ID != d.id || msg.Tag != d.tag {
		return "", false
	}
	return msg.Value, true
}

// Cancel discards any pending tick.
func (d *Debouncer) Cancel() { d.tag++ }
