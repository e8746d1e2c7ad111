package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

type ReportWriter interface {
	Write(ctx context.Context, report domain.BatchReport) (string, error)
}
