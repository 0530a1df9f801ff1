package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/model"
)

func newIntegrationsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrations",
		Short: "Inspect connected repository hosts",
	}
	cmd.AddCommand(newIntegrationsListCmd(configPath))
	cmd.AddCommand(newIntegrationsReposCmd(configPath))
	return cmd
}

func newIntegrationsListCmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connected platforms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			ins, err := st.GetIntegrations(ctx, cfg.API.UserID)
			if err != nil {
				return fmt.Errorf("listing integrations: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ins) == 0 {
				fmt.Fprintln(out, "No integrations connected.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PLATFORM\tREPOSITORY\tCONNECTED")
			for _, in := range ins {
				fmt.Fprintf(w, "%s\t%s\t%s\n", in.Platform, in.RepoURL, in.ConnectedAt.Format(model.DateLayout))
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func newIntegrationsReposCmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "repos <platform>",
		Short: "List repositories visible through a platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := model.Platform(strings.ToLower(args[0]))
			if !platform.Valid() {
				return &model.ValidationError{
					Field:   "platform",
					Message: fmt.Sprintf("expected github, gitlab or bitbucket, got %q", args[0]),
				}
			}
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			repos, err := st.GetRepos(ctx, cfg.API.UserID, platform)
			if err != nil {
				return fmt.Errorf("listing %s repositories: %w", platform, err)
			}
			out := cmd.OutOrStdout()
			if len(repos) == 0 {
				fmt.Fprintln(out, "No repositories.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLANGUAGE\tSTARS\tVISIBILITY")
			for _, r := range repos {
				vis := "public"
				if r.IsPrivate {
					vis = "private"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Name, r.Language, r.Stars, vis)
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}
