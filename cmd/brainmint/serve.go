package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/credential"
	"github.com/nhle/brainmint/internal/integration"
	"github.com/nhle/brainmint/internal/server"
	"github.com/nhle/brainmint/internal/store"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		addr   string
		driver string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST task store",
		Long:  "Serves the task, sprint, report, page and integration API over SQLite or MySQL until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if driver != "" {
				cfg.Server.Driver = driver
			}
			if dsn != "" {
				cfg.Server.DSN = dsn
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := newLogger(cfg.Log, cmd.OutOrStdout())
			st, err := store.Open(cfg.Server.Driver, cfg.Server.DSN)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Server.Driver, err)
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, st, logger, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().StringVar(&driver, "driver", "", "sqlite or mysql, overrides server.driver")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database path or DSN, overrides server.dsn")
	return cmd
}

func runServer(ctx context.Context, st store.Store, logger *slog.Logger, addr string) error {
	opts := []server.Option{
		server.WithRepoLister(integration.NewRegistry(integration.WithLogger(logger))),
	}
	if tok := credential.LookupToken(); tok != "" {
		opts = append(opts, server.WithAuthToken(tok))
	}
	logger.Info("starting server", slog.String("addr", addr))
	return server.New(st, logger, opts...).Run(ctx, addr)
}
