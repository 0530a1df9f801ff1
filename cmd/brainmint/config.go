package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/credential"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/remote"
)

// clientFlags are the connection overrides shared by client commands.
type clientFlags struct {
	baseURL string
	userID  int64
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "API root, overrides api.base_url")
	cmd.Flags().Int64Var(&f.userID, "user", 0, "user id, overrides api.user_id")
}

// apply copies the flags that were set onto cfg.
func (f *clientFlags) apply(cfg *model.AppConfig) {
	if f.baseURL != "" {
		cfg.API.BaseURL = f.baseURL
	}
	if f.userID > 0 {
		cfg.API.UserID = f.userID
	}
}

func loadConfig(path string) (*model.AppConfig, error) {
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// requireUser rejects a config without a user to act for.
func requireUser(cfg *model.AppConfig) error {
	if cfg.API.UserID <= 0 {
		return &model.ValidationError{
			Field:   "user",
			Message: "set api.user_id in the config or pass --user",
		}
	}
	return nil
}

// newLogger builds the slog logger described by cfg, writing to w.
func newLogger(cfg model.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openLogFile opens the TUI log, since stdout belongs to the renderer.
func openLogFile() (*os.File, error) {
	dir := model.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "brainmint.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	return f, nil
}

const defaultAttemptTimeout = 30 * time.Second

func attemptTimeout(cfg *model.AppConfig) time.Duration {
	if cfg.API.TimeoutSec <= 0 {
		return defaultAttemptTimeout
	}
	return time.Duration(cfg.API.TimeoutSec) * time.Second
}

// requestTimeout bounds one command's calls including retries.
func requestTimeout(cfg *model.AppConfig) time.Duration {
	return attemptTimeout(cfg) * time.Duration(max(cfg.API.MaxRetries, 0)+1)
}

// newRemote builds the REST store client for cfg.
func newRemote(cfg *model.AppConfig, logger *slog.Logger) *remote.HTTPStore {
	client := remote.NewClient(cfg.API.BaseURL,
		remote.WithToken(credential.LookupToken()),
		remote.WithTimeout(attemptTimeout(cfg)),
		remote.WithMaxRetries(cfg.API.MaxRetries),
		remote.WithLogger(logger),
	)
	return remote.NewHTTPStore(client)
}

// clientSetup loads the config, applies flags and returns a client for
// the configured user. Logs go to stderr.
func clientSetup(cmd *cobra.Command, configPath string, flags *clientFlags) (*model.AppConfig, *remote.HTTPStore, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	flags.apply(cfg)
	if err := requireUser(cfg); err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())
	return cfg, newRemote(cfg, logger), nil
}
