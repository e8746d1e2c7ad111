package application

import (
	"context"
	"fmt"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
	"github.com/brdocs/docket/internal/retry"
)

const queuePageSize = 100

type QueueService struct {
	gateway  ports.QueueGateway
	pauseMin time.Duration
	pauseMax time.Duration
}

func NewQueueService(gateway ports.QueueGateway, pauseMin, pauseMax time.Duration) *QueueService {
	return &QueueService{gateway: gateway, pauseMin: pauseMin, pauseMax: pauseMax}
}

func (s *QueueService) List(ctx context.Context, sess *domain.Session, starred bool) ([]domain.Queue, error) {
	queues, err := s.gateway.Queues(ctx, sess, starred)
	if err != nil {
		return nil, fmt.Errorf("list work queues: %w", err)
	}

	return queues, nil
}

func (s *QueueService) Resolve(ctx context.Context, sess *domain.Session, name string, starred bool) (domain.Queue, error) {
	queues, err := s.List(ctx, sess, starred)
	if err != nil {
		return domain.Queue{}, err
	}

	labels := make([]string, len(queues))
	for i, q := range queues {
		labels[i] = q.Name
	}

	idx, ok := domain.MatchName(name, labels)
	if !ok {
		return domain.Queue{}, fmt.Errorf("%w: %q", domain.ErrQueueNotFound, name)
	}

	return queues[idx], nil
}

// AllCases pages through the queue until the server-reported total is
// reached. A non-positive limit means everything.
func (s *QueueService) AllCases(ctx context.Context, sess *domain.Session, queue domain.Queue, limit int) ([]domain.CaseRef, error) {
	var all []domain.CaseRef

	for page := 0; ; page++ {
		if page > 0 {
			if err := retry.SleepBetween(ctx, s.pauseMin, s.pauseMax); err != nil {
				return nil, err
			}
		}

		cases, total, err := s.gateway.Cases(ctx, sess, queue.Name, queue.Starred, page, queuePageSize)
		if err != nil {
			return nil, fmt.Errorf("list cases of queue %q page %d: %w", queue.Name, page, err)
		}
		if len(cases) == 0 {
			break
		}

		all = append(all, cases...)

		if limit > 0 && len(all) >= limit {
			all = all[:limit]
			break
		}
		if len(all) >= total {
			break
		}
	}

	return all, nil
}
