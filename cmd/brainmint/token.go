package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/credential"
)

type credentialOpener func() (*credential.Store, error)

func newTokenCmd() *cobra.Command {
	return newTokenCmdWith(credential.Open)
}

func newTokenCmdWith(open credentialOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API token in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store the API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			if err := s.SetToken(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token saved.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			if err := s.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report where the API token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if strings.TrimSpace(os.Getenv(credential.TokenEnv)) != "" {
				fmt.Fprintf(out, "Using %s.\n", credential.TokenEnv)
				return nil
			}
			s, err := open()
			if err != nil {
				return err
			}
			tok, err := s.Token()
			if err != nil {
				return err
			}
			if tok == "" {
				fmt.Fprintln(out, "No token stored.")
				return nil
			}
			fmt.Fprintln(out, "Token stored in the keyring.")
			return nil
		},
	})
	return cmd
}
