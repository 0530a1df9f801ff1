package main

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/app"
)

func newTUICmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Long:  "Opens the Board, Backlog, Calendar, Sprints and Archived tabs for the configured user.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, *configPath, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runTUI(cmd *cobra.Command, configPath string, flags *clientFlags) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	flags.apply(cfg)
	if err := requireUser(cfg); err != nil {
		return err
	}

	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(cfg.Log, logFile)
	logger.Info("starting dashboard",
		slog.String("base_url", cfg.API.BaseURL),
		slog.Int64("user_id", cfg.API.UserID),
	)

	m := app.New(app.Options{
		Store:        newRemote(cfg, logger),
		UserID:       cfg.API.UserID,
		Logger:       logger,
		PollInterval: time.Duration(cfg.Display.PollIntervalSec) * time.Second,
		Debounce:     time.Duration(cfg.Display.SearchDebounceMS) * time.Millisecond,
		PageSize:     cfg.Display.ReportPageSize,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
