package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "brainmint",
		Short:         "Brainmint: sprint planning and kanban in the terminal",
		Long:          "Brainmint plans sprints and tracks tasks on a kanban board, backlog and calendar backed by a REST task store.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/brainmint/config.yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newTUICmd(&configPath))
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newTasksCmd(&configPath))
	cmd.AddCommand(newSprintsCmd(&configPath))
	cmd.AddCommand(newPagesCmd(&configPath))
	cmd.AddCommand(newIntegrationsCmd(&configPath))
	cmd.AddCommand(newTokenCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "brainmint %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
