package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/view"
)

func newSprintsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprints",
		Short: "Inspect the sprint timeline",
	}
	cmd.AddCommand(newSprintsStatsCmd(configPath))
	return cmd
}

func newSprintsStatsCmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print timeline statistics",
		Long:  "Prints project length, average sprint length, sprint completion and backlog health.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			coll, err := board.Load(ctx, st, cfg.API.UserID)
			if err != nil {
				return fmt.Errorf("loading sprints: %w", err)
			}
			printSprintStats(cmd.OutOrStdout(), coll)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printSprintStats(out io.Writer, coll *board.Collection) {
	tasks := coll.Tasks()
	stats := view.ComputeSprintStats(coll.Sprints(), coll.CurrentSprint(), len(view.BacklogTasks(tasks)), len(tasks))

	current := "none"
	if cur := coll.CurrentSprint(); cur != nil {
		current = cur.Title
	}
	fmt.Fprintf(out, "%s\n", coll.ProjectTitle())
	fmt.Fprintf(out, "Active sprint:   %s (%d open)\n", current, stats.ActiveTasks)
	fmt.Fprintf(out, "Project length:  %d days\n", stats.TotalProjectDays)
	fmt.Fprintf(out, "Average sprint:  %.1f days\n", stats.AvgSprintDays)
	fmt.Fprintf(out, "Sprint progress: %d%% (%d/%d)\n",
		stats.SprintCompletionPct, stats.CompletedSprintTasks, stats.TotalSprintTasks)
	fmt.Fprintf(out, "Backlog:         %d of %d tasks, %d%% %s\n",
		stats.BacklogCount, stats.TotalTasks, stats.BacklogPct, stats.Health())

	if len(stats.ChartSeries) == 0 {
		return
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPRINT\tDAYS\tDONE\tTASKS")
	for _, p := range stats.ChartSeries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", p.Name, p.Duration, p.Done, p.Tasks)
	}
	w.Flush()
}
