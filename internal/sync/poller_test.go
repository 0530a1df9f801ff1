package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextTick(t *testing.T, p *Poller) TickMsg {
	t.Helper()
	done := make(chan TickMsg, 1)
	go func() {
		msg, _ := p.WaitForNextResult()().(TickMsg)
		done <- msg
	}()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no poll result")
		return TickMsg{}
	}
}

func TestPollerDisabled(t *testing.T) {
	p := New(ProbeFunc(func(context.Context) error { return nil }), 0)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.Start())
	assert.Nil(t, p.WaitForNextResult())

	assert.False(t, New(nil, time.Second).Enabled())
}

func TestPollerTicks(t *testing.T) {
	var calls atomic.Int32
	p := New(ProbeFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	}), 10*time.Millisecond)
	t.Cleanup(p.Stop)

	require.NotNil(t, p.Start())
	assert.Nil(t, p.Start(), "second start is a no-op")

	msg := nextTick(t, p)
	assert.NoError(t, msg.Err)
	assert.False(t, msg.At.IsZero())
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	st := p.Status()
	assert.Equal(t, SyncIdle, st.State)
	assert.False(t, st.LastSync.IsZero())
}

func TestPollerRefreshAndError(t *testing.T) {
	boom := errors.New("connection refused")
	p := New(ProbeFunc(func(context.Context) error { return boom }), time.Hour)
	t.Cleanup(p.Stop)

	require.NotNil(t, p.Start())
	p.Refresh()

	msg := nextTick(t, p)
	assert.ErrorIs(t, msg.Err, boom)

	st := p.Status()
	assert.Equal(t, SyncError, st.State)
	assert.Equal(t, "offline", st.State.String())
	assert.True(t, st.LastSync.IsZero())
}

func TestPollerStopUnblocksWaiters(t *testing.T) {
	p := New(ProbeFunc(func(context.Context) error { return nil }), time.Hour)
	cmd := p.Start()
	require.NotNil(t, cmd)

	p.Stop()
	assert.Nil(t, cmd())
	p.Stop()
}
