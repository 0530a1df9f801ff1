// Package sync keeps the open page fresh by polling the backend in the
// background and asking the UI to reload.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SyncState represents the current state of the backend poll.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "offline"
	default:
		return "idle"
	}
}

// SyncStatus holds the state of the last poll.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// TickMsg is a tea.Msg sent after every poll. A nil Err means the
// backend answered and the open page should reload.
type TickMsg struct {
	At  time.Time
	Err error
}

// Prober checks that the backend is reachable.
type Prober interface {
	Health(ctx context.Context) error
}

// ProbeFunc adapts a plain function to Prober.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Health(ctx context.Context) error { return f(ctx) }

// probeTimeout is the maximum time allowed for a single probe.
const probeTimeout = 10 * time.Second

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger for poll failures.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source stamped on results.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// Poller probes the backend on an interval and reports each result to
// the Bubble Tea runtime.
type Poller struct {
	probe     Prober
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	resultCh  chan TickMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	stopped   bool
	status    SyncStatus
}

// New creates a Poller. An interval of zero or less disables polling;
// Start then returns nil.
func New(probe Prober, interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		probe:     probe,
		interval:  interval,
		logger:    slog.Default(),
		now:       time.Now,
		resultCh:  make(chan TickMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled reports whether the poller will run.
func (p *Poller) Enabled() bool {
	return p.interval > 0 && p.probe != nil
}

// Start launches the polling goroutine and returns a command that
// waits for the first result. Calling Start twice, or after Stop, is a
// no-op.
func (p *Poller) Start() tea.Cmd {
	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
	p.stopped = true
}

// Refresh triggers an immediate poll. A refresh already pending
// absorbs this one.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the state of the last poll.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		}
	}
}

// poll performs a single probe and publishes the result.
func (p *Poller) poll() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := p.probe.Health(ctx)
	if err != nil {
		p.logger.Warn("backend poll failed", slog.String("error", err.Error()))
		p.setStatus(SyncError, err)
	} else {
		p.setStatus(SyncIdle, nil)
	}
	p.sendResult(TickMsg{At: p.now(), Err: err})
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle {
		p.status.LastSync = p.now()
	}
}

// sendResult publishes without blocking; a full channel drops the
// result since the next tick supersedes it.
func (p *Poller) sendResult(msg TickMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a command that waits for the next poll.
// Call it after handling a TickMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	if !p.Enabled() {
		return nil
	}
	return p.waitForResult()
}
