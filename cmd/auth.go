package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored portal credentials",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthClearCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store portal credentials for later logins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := domain.Credentials{Username: username, Password: password}
			if err := app.credFile.Save(cmd.Context(), creds); err != nil {
				return fmt.Errorf("store credentials: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Credentials stored for %s\n", username)
			return err
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Portal username")
	cmd.Flags().StringVar(&password, "pass", "", "Portal password")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAuthClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove stored portal credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.credFile.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear credentials: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Stored credentials removed.")
			return err
		},
	}
}
