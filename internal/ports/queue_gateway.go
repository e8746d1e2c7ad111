package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

type QueueGateway interface {
	Queues(ctx context.Context, session *domain.Session, starred bool) ([]domain.Queue, error)
	// Cases returns one page plus the server-reported total.
	Cases(ctx context.Context, session *domain.Session, queue string, starred bool, page, size int) ([]domain.CaseRef, int, error)
}
