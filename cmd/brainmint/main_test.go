package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/brainmint/internal/credential"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/testutil"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// clientArgs points a client command at ts as user 1 with no config file.
func clientArgs(t *testing.T, ts *testutil.TestServer, args ...string) []string {
	t.Helper()
	t.Setenv(credential.TokenEnv, "test")
	return append(args,
		"--base-url", ts.BaseURL(),
		"--user", "1",
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
	)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "brainmint dev (commit: none, built: unknown)\n", out)
}

func TestHelpListsCommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, name := range []string{"tui", "serve", "tasks", "sprints", "pages", "integrations", "token"} {
		assert.Contains(t, out, name)
	}
}

func TestUnknownCommandExitsNonZero(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nope"})
	assert.Equal(t, 1, execute(cmd))
}

func TestClientCommandsNeedUser(t *testing.T) {
	_, err := run(t, "tasks", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestTasksCommand(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 1, Title: "Write docs", Priority: model.PriorityLow})
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 1, Title: "Fix login", Priority: model.PriorityHigh})
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 2, Title: "Someone else"})

	out, err := run(t, clientArgs(t, ts, "tasks", "--sort", "priority")...)
	require.NoError(t, err)

	assert.Contains(t, out, "TITLE")
	assert.NotContains(t, out, "Someone else")
	assert.Less(t, strings.Index(out, "Fix login"), strings.Index(out, "Write docs"))
	assert.Contains(t, out, "page 1 of 1 · 2 tasks")

	out, err = run(t, clientArgs(t, ts, "tasks", "--search", "LOGIN", "--sprint", "none")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Fix login")
	assert.NotContains(t, out, "Write docs")

	out, err = run(t, clientArgs(t, ts, "tasks", "--priority", "Medium")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks match.")
}

func TestTasksCommandRejectsBadFlags(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, err := run(t, clientArgs(t, ts, "tasks", "--sort", "color")...)
	assert.True(t, model.IsValidationError(err))

	_, err = run(t, clientArgs(t, ts, "tasks", "--sprint", "soon")...)
	assert.True(t, model.IsValidationError(err))
}

func TestSprintStatsCommand(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.SeedSprints(t, ts.Store, 1, model.Day(time.Now()), "Alpha", "Beta")
	testutil.SeedTask(t, ts.Store, model.TaskDraft{UserID: 1, Title: "Loose"})

	out, err := run(t, clientArgs(t, ts, "sprints", "stats")...)
	require.NoError(t, err)

	assert.Contains(t, out, "Test Project")
	assert.Contains(t, out, "Active sprint:   Alpha")
	assert.Contains(t, out, "Project length:  28 days")
	assert.Contains(t, out, "1 of 1 tasks, 100% high")
	assert.Contains(t, out, "Beta")
}

func TestPagesCommands(t *testing.T) {
	ts := testutil.NewTestServer(t)

	out, err := run(t, clientArgs(t, ts, "pages", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No pages.")

	out, err = run(t, clientArgs(t, ts, "pages", "add", "Retro", "notes", "--body", "went well")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Retro notes")

	out, err = run(t, clientArgs(t, ts, "pages", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Retro notes")

	_, err = run(t, clientArgs(t, ts, "pages", "rm", "abc")...)
	assert.True(t, model.IsValidationError(err))
}

func TestIntegrationsRejectUnknownPlatform(t *testing.T) {
	ts := testutil.NewTestServer(t)

	out, err := run(t, clientArgs(t, ts, "integrations", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No integrations connected.")

	_, err = run(t, clientArgs(t, ts, "integrations", "repos", "svn")...)
	assert.True(t, model.IsValidationError(err))
}

func TestTokenCommands(t *testing.T) {
	t.Setenv(credential.TokenEnv, "")
	s := credential.NewStore(keyring.NewArrayKeyring(nil))
	open := func() (*credential.Store, error) { return s, nil }

	exec := func(args ...string) string {
		t.Helper()
		cmd := newTokenCmdWith(open)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	assert.Equal(t, "No token stored.\n", exec("status"))
	assert.Equal(t, "Token saved.\n", exec("set", "secret"))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)
	assert.Equal(t, "Token stored in the keyring.\n", exec("status"))

	exec("clear")
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(model.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestRequestTimeoutCoversRetries(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.API.TimeoutSec = 5
	cfg.API.MaxRetries = 2
	assert.Equal(t, 15*time.Second, requestTimeout(cfg))

	cfg.API.TimeoutSec = 0
	assert.Equal(t, defaultAttemptTimeout*3, requestTimeout(cfg))
}
