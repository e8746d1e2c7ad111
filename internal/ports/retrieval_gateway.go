package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

// SubmitGateway walks the portal's request flow for one case and classifies
// the reply. A portal rejection is a Rejected result, not an error; the
// error return is for transport-level failure only.
type SubmitGateway interface {
	Submit(ctx context.Context, session *domain.Session, req domain.RetrievalRequest) (domain.SubmissionResult, []domain.DiagnosticEntry, error)
}

type PickupGateway interface {
	Available(ctx context.Context, session *domain.Session) ([]domain.PickupItem, error)
	FetchArtifact(ctx context.Context, session *domain.Session, item domain.PickupItem, destDir string) (string, error)
	FetchDirect(ctx context.Context, url, caseNumber, destDir string) (string, error)
}
