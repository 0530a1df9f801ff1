// Package uitest drives pages against the in-process backend.
package uitest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/brainmint/internal/keys"
	"github.com/nhle/brainmint/internal/testutil"
	"github.com/nhle/brainmint/internal/ui"
)

// UserID is the user every page in these helpers works for.
const UserID int64 = 1

// Deps returns page dependencies backed by a fresh test server.
func Deps(t testing.TB) (ui.Deps, *testutil.TestServer) {
	t.Helper()
	ts := testutil.NewTestServer(t)
	return ui.Deps{
		Store:    ts.Remote(),
		UserID:   UserID,
		Keys:     keys.DefaultKeyMap(),
		Logger:   testutil.DiscardLogger(),
		Now:      time.Now,
		Debounce: time.Millisecond,
		PageSize: 5,
	}, ts
}

// Settle runs cmd and every follow-up command, feeding each message
// back into p. Batches are flattened and nil messages dropped.
func Settle(t testing.TB, p ui.Page, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("commands did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, p.Update(msg))
		}
	}
}

// Load initialises p and waits for its first snapshot.
func Load(t testing.TB, p ui.Page) {
	t.Helper()
	p.SetSize(120, 40)
	Settle(t, p, p.Init())
}

// Press sends a key to p and settles whatever it starts.
func Press(t testing.TB, p ui.Page, keys ...string) {
	t.Helper()
	for _, k := range keys {
		Settle(t, p, p.Update(Key(k)))
	}
}

// Key builds the tea.KeyMsg for a binding string such as "j" or "esc".
func Key(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
