package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docket",
		Short:         "docket: bulk case-file retrieval from the court e-filing portal",
		Long:          "docket signs on to the court e-filing portal, walks a work queue's pending cases, requests their document bundles, and carries every artifact home with a per-case report.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log portal traffic and batch progress to stderr")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			app.logLevel.Set(slog.LevelDebug)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newWhoamiCmd(app),
		newContextCmd(app),
		newQueueCmd(app),
		newFetchCmd(app),
		newPickupCmd(app),
		newHistoryCmd(app),
		newDoctypesCmd(),
		newAuthCmd(app),
		newSessionCmd(app),
	)

	return rootCmd
}
