package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerKeepsLatest(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	first := d.Trigger("ap")
	second := d.Trigger("apollo")

	stale, ok := first().(DebounceMsg)
	require.True(t, ok)
	_, accepted := d.Accept(stale)
	assert.False(t, accepted)

	latest, ok := second().(DebounceMsg)
	require.True(t, ok)
	v, accepted := d.Accept(latest)
	assert.True(t, accepted)
	assert.Equal(t, "apollo", v)
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	msg := d.Trigger("x")().(DebounceMsg)
	d.Cancel()

	_, accepted := d.Accept(msg)
	assert.False(t, accepted)
}

func TestDebouncersAreIndependent(t *testing.T) {
	a := NewDebouncer(time.Millisecond)
	b := NewDebouncer(0)
	assert.Equal(t, DefaultDebounce, b.delay)

	msg := a.Trigger("x")().(DebounceMsg)
	_, accepted := b.Accept(msg)
	assert.False(t, accepted)
}
