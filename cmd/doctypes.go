package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brdocs/docket/internal/domain"
)

func newDoctypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctypes",
		Short: "List document type filters and their portal form codes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, dt := range domain.DocumentTypes() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", dt, dt.FormCode()); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
