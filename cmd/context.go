package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newContextCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect and switch the portal operating context",
	}

	cmd.AddCommand(newContextListCmd(app), newContextSelectCmd(app))

	return cmd
}

func newContextListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the operating contexts the account can act under",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			contexts, err := app.contexts.List(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if len(contexts) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No operating contexts offered.")
				return err
			}

			for _, c := range contexts {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", c.Index, c.FullName()); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func newContextSelectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <name>",
		Short: "Switch to the operating context matching the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			selected, err := app.contexts.Select(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Operating context: %s\n", selected.FullName())
			return err
		},
	}
}
