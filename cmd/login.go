package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		username string
		password string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the portal and save the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.overrides.Overlay(domain.Credentials{Username: username, Password: password})

			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, force); err != nil {
				return err
			}

			return printIdentity(cmd, sess)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Portal username (overrides DOCKET_USER and stored credentials)")
	cmd.Flags().StringVar(&password, "pass", "", "Portal password (overrides DOCKET_PASS and stored credentials)")
	cmd.Flags().BoolVar(&force, "force", false, "Discard the saved session and authenticate from scratch")

	return cmd
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the portal identity behind the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			return printIdentity(cmd, sess)
		},
	}
}

func printIdentity(cmd *cobra.Command, sess *domain.Session) error {
	if sess.User == nil {
		return errors.New("session carries no portal identity")
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s (%s), user id %d, context id %d\n",
		sess.User.Name, sess.User.Login, sess.User.ID, sess.User.ContextID)
	return err
}
