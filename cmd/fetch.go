package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	summaryadapter "github.com/brdocs/docket/internal/adapters/render/summary"
	"github.com/brdocs/docket/internal/application"
	"github.com/brdocs/docket/internal/domain"
)

func newFetchCmd(app *app) *cobra.Command {
	var (
		queueName   string
		contextName string
		caseNumbers []string
		docType     string
		dest        string
		limit       int
		starred     bool
		noRetry     bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Request document bundles for a queue's pending cases and collect them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			docFilter := domain.ParseDocumentType(docType)
			if !docFilter.Known() {
				return fmt.Errorf("unknown document type %q (see docket doctypes)", docType)
			}

			sess := &domain.Session{}
			if err := app.sessions.EnsureAuthenticated(cmd.Context(), sess, false); err != nil {
				return err
			}

			contextLabel := ""
			if contextName != "" {
				selected, err := app.contexts.Select(cmd.Context(), sess, contextName)
				if err != nil {
					return err
				}
				contextLabel = selected.FullName()
			} else if sess.Context != nil {
				contextLabel = sess.Context.FullName()
			}

			queue, err := app.queues.Resolve(cmd.Context(), sess, queueName, starred)
			if err != nil {
				return err
			}

			cases, err := app.queues.AllCases(cmd.Context(), sess, queue, limit)
			if err != nil {
				return err
			}
			if len(caseNumbers) > 0 {
				cases, err = pickCases(cases, caseNumbers)
				if err != nil {
					return err
				}
			}
			if len(cases) == 0 {
				return fmt.Errorf("queue %q has no pending cases", queue.Name)
			}

			destDir := dest
			if destDir == "" {
				destDir = app.cfg.downloadDir
			}
			destDir = filepath.Join(destDir, domain.SanitizeFolderName(queue.Name))

			store, err := app.openHistory()
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer func() { _ = store.Close() }()

			batches := application.NewBatchService(app.submitter, app.pickup, app.reports, store, nil, app.logger)
			spec := application.BatchSpec{
				Queue:        queue.Name,
				Context:      contextLabel,
				DocumentType: docFilter,
				Cases:        cases,
				Destination:  destDir,
				Timing:       app.cfg.timing,
				RetryFailed:  !noRetry,
			}

			var report domain.BatchReport
			label := fmt.Sprintf("Retrieving %d cases from %q...", len(cases), queue.Name)
			runErr := runBatchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
				result, err := batches.Run(ctx, sess, spec)
				report = result
				return err
			})
			if runErr != nil {
				return runErr
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			rendered, err := app.renderSummary(report, summaryadapter.RenderOptions{})
			if err != nil {
				return fmt.Errorf("render batch summary: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "", "Work queue to pull pending cases from")
	cmd.Flags().StringVar(&contextName, "context", "", "Operating context to select before resolving the queue")
	cmd.Flags().StringSliceVar(&caseNumbers, "case", nil, "Only fetch these case numbers (repeatable)")
	cmd.Flags().StringVar(&docType, "type", string(domain.DocTypeAll), "Document type filter (see docket doctypes)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory (defaults to download.dir from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the number of cases taken from the queue (0 takes all)")
	cmd.Flags().BoolVar(&starred, "starred", false, "Resolve the queue among the starred subset")
	cmd.Flags().BoolVar(&noRetry, "no-retry", false, "Skip the second fetch attempt for failed downloads")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw batch report as JSON")
	_ = cmd.MarkFlagRequired("queue")

	return cmd
}

// pickCases narrows the queue's case set to explicitly requested numbers. The
// portal's retrieval flow needs the internal case id, which only the queue
// listing provides, so requested numbers must be pending in the queue.
func pickCases(cases []domain.CaseRef, wanted []string) ([]domain.CaseRef, error) {
	byNumber := make(map[string]domain.CaseRef, len(cases))
	for _, ref := range cases {
		byNumber[ref.Number] = ref
	}

	selected := make([]domain.CaseRef, 0, len(wanted))
	var missing []string
	for _, number := range wanted {
		number = strings.TrimSpace(number)
		if number == "" {
			continue
		}
		ref, ok := byNumber[number]
		if !ok {
			missing = append(missing, number)
			continue
		}
		selected = append(selected, ref)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("cases not pending in this queue: %s", strings.Join(missing, ", "))
	}

	return selected, nil
}
