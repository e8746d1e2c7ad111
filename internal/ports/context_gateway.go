package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

type ContextGateway interface {
	List(ctx context.Context, session *domain.Session) ([]domain.OperatingContext, error)
	Select(ctx context.Context, session *domain.Session, target domain.OperatingContext) error
}
