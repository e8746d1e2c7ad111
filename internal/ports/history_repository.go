package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

type HistoryRepository interface {
	SaveBatch(ctx context.Context, report domain.BatchReport, reportPath string) error
	RecentBatches(ctx context.Context, limit int) ([]domain.BatchSummary, error)
	CaseOutcomes(ctx context.Context, caseNumber string) ([]domain.CaseHistoryEntry, error)
}
