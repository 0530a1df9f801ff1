package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/nhle/brainmint/internal/remote"
	"github.com/nhle/brainmint/internal/server"
	"github.com/nhle/brainmint/internal/store"
)

// TestServer is an in-process REST backend over an in-memory store.
type TestServer struct {
	*httptest.Server
	Store *store.SQLStore
}

// BaseURL is the API root clients should be pointed at.
func (ts *TestServer) BaseURL() string {
	return ts.URL + "/api"
}

// Remote returns a remote store talking to the test server.
func (ts *TestServer) Remote(opts ...remote.ClientOption) *remote.HTTPStore {
	opts = append([]remote.ClientOption{remote.WithMaxRetries(0)}, opts...)
	return remote.NewHTTPStore(remote.NewClient(ts.BaseURL(), opts...))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestServer starts the gin backend on an httptest server. Both the
// server and its store are closed when the test completes.
func NewTestServer(t testing.TB, opts ...server.Option) *TestServer {
	t.Helper()

	st := NewTestStore(t)
	opts = append([]server.Option{server.WithAccessLog(nil)}, opts...)
	srv := server.New(st, DiscardLogger(), opts...)

	hs := httptest.NewServer(srv.Engine())
	t.Cleanup(hs.Close)

	return &TestServer{Server: hs, Store: st}
}
