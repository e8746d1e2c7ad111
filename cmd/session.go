package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or discard the saved portal session",
	}

	cmd.AddCommand(newSessionStatusCmd(app), newSessionClearCmd(app))

	return cmd
}

func newSessionStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved session's age and cookie count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := app.sessionStore.Load(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrNoSavedSession) {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved session.")
					return err
				}
				return err
			}

			now := app.now()
			state := "usable"
			if saved.Expired(now, app.cfg.sessionMaxAge) {
				state = "expired"
			}
			age := now.Sub(saved.CapturedAt).Truncate(time.Second)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved session: captured %s ago (%s), cookies: %d\n",
				age, state, len(saved.Cookies))
			return err
		},
	}
}

func newSessionClearCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.sessionStore.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear saved session: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Saved session removed.")
			return err
		},
	}
}
