package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/model"
)

func newPagesCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Manage planning notes",
	}
	cmd.AddCommand(newPagesListCmd(configPath))
	cmd.AddCommand(newPagesAddCmd(configPath))
	cmd.AddCommand(newPagesRmCmd(configPath))
	return cmd
}

func newPagesListCmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			pages, err := st.GetPages(ctx, cfg.API.UserID)
			if err != nil {
				return fmt.Errorf("listing pages: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(pages) == 0 {
				fmt.Fprintln(out, "No pages.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tUPDATED")
			for _, p := range pages {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.Title, p.UpdatedAt.Format(model.DateLayout))
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func newPagesAddCmd(configPath *string) *cobra.Command {
	var (
		flags clientFlags
		body  string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return &model.ValidationError{Field: "title", Message: "title is required"}
			}
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			page, err := st.CreatePage(ctx, cfg.API.UserID, title, body)
			if err != nil {
				return fmt.Errorf("creating page: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created page %d: %s\n", page.ID, page.Title)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&body, "body", "", "page body")
	return cmd
}

func newPagesRmCmd(configPath *string) *cobra.Command {
	var flags clientFlags

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return &model.ValidationError{Field: "id", Message: fmt.Sprintf("invalid page id %q", args[0])}
			}
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			if err := st.DeletePage(ctx, id); err != nil {
				return fmt.Errorf("deleting page %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted page %d\n", id)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
