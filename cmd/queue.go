package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newQueueCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the work queues of the active context",
	}

	cmd.AddCommand(newQueueListCmd(app))

	return cmd
}

func newQueueListCmd(app *app) *cobra.Command {
	var starred bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work queues with pending cases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			queues, err := app.queues.List(cmd.Context(), sess, starred)
			if err != nil {
				return err
			}
			if len(queues) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No work queues with pending cases.")
				return err
			}

			for _, q := range queues {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  (%d pending)\n", q.Name, q.Pending); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&starred, "starred", false, "List only the starred queues")

	return cmd
}
