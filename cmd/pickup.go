package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newPickupCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pickup",
		Short: "List the bundles waiting in the portal's pickup area",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			items, err := app.pickup.Available(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Pickup area is empty.")
				return err
			}

			for _, item := range items {
				name := item.FileName
				if name == "" {
					name = item.Handle
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s%s\n", item.Handle, name, expiryNote(app, item)); err != nil {
					return err
				}
				if len(item.Cases) > 0 {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "    covers %s\n", strings.Join(item.Cases, ", ")); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}
}

func expiryNote(app *app, item domain.PickupItem) string {
	if item.ExpiresAt.IsZero() {
		return ""
	}

	left := item.ExpiresAt.Sub(app.now())
	if left <= 0 {
		return "  (expired)"
	}

	return fmt.Sprintf("  (expires in %s)", left.Truncate(time.Minute))
}
