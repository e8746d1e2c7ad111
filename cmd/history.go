package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newHistoryCmd(app *app) *cobra.Command {
	var (
		caseNumber string
		limit      int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batches, or every recorded outcome of one case",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.openHistory()
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer func() { _ = store.Close() }()

			if caseNumber != "" {
				entries, err := store.CaseOutcomes(cmd.Context(), caseNumber)
				if err != nil {
					return err
				}
				return writeCaseHistory(cmd, caseNumber, entries, asJSON)
			}

			batches, err := store.RecentBatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeBatchHistory(cmd, batches, asJSON)
		},
	}

	cmd.Flags().StringVar(&caseNumber, "case", "", "Show every recorded attempt for this case number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of batches to list (0 uses the default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw records as JSON")

	return cmd
}

func writeCaseHistory(cmd *cobra.Command, caseNumber string, entries []domain.CaseHistoryEntry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No recorded attempts for %s.\n", caseNumber)
		return err
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-12s attempt %d  batch %s",
			e.UpdatedAt.Local().Format("2006-01-02 15:04"), e.State, e.Attempt, e.BatchID)
		if e.ArtifactPath != "" {
			line += "  " + e.ArtifactPath
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}

	return nil
}

func writeBatchHistory(cmd *cobra.Command, batches []domain.BatchSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(batches)
	}

	if len(batches) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded yet.")
		return err
	}

	for _, b := range batches {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %d/%d downloaded  %s\n",
			b.StartedAt.Local().Format("2006-01-02 15:04"), b.Queue, b.Counts.Downloaded, b.Counts.Submitted, b.BatchID); err != nil {
			return err
		}
	}

	return nil
}
