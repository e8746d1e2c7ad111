package application

import (
	"context"
	"fmt"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

type ContextService struct {
	gateway ports.ContextGateway
	prober  ports.SessionProber
	store   ports.SessionStore
}

func NewContextService(gateway ports.ContextGateway, prober ports.SessionProber, store ports.SessionStore) *ContextService {
	return &ContextService{gateway: gateway, prober: prober, store: store}
}

func (s *ContextService) List(ctx context.Context, sess *domain.Session) ([]domain.OperatingContext, error) {
	contexts, err := s.gateway.List(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list operating contexts: %w", err)
	}

	return contexts, nil
}

func (s *ContextService) Select(ctx context.Context, sess *domain.Session, name string) (domain.OperatingContext, error) {
	contexts, err := s.List(ctx, sess)
	if err != nil {
		return domain.OperatingContext{}, err
	}

	labels := make([]string, len(contexts))
	for i, c := range contexts {
		labels[i] = c.FullName()
	}

	idx, ok := domain.MatchName(name, labels)
	if !ok {
		return domain.OperatingContext{}, fmt.Errorf("%w: %q", domain.ErrContextNotFound, name)
	}
	target := contexts[idx]

	if sess.Context != nil && sess.Context.FullName() == target.FullName() {
		return target, nil
	}

	if err := s.gateway.Select(ctx, sess, target); err != nil {
		return domain.OperatingContext{}, fmt.Errorf("select context %q: %w", target.FullName(), err)
	}

	// The switch rewrites server-side state, so re-probe before trusting the
	// session for queue work.
	user, err := s.prober.Probe(ctx, sess)
	if err != nil {
		return domain.OperatingContext{}, fmt.Errorf("probe after context switch: %w", err)
	}
	sess.User = &user
	sess.Context = &target

	if err := s.store.Save(ctx, *sess); err != nil {
		return domain.OperatingContext{}, fmt.Errorf("save session: %w", err)
	}

	return target, nil
}
