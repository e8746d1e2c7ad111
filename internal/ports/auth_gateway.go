package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

// LoginGateway performs the credential handshake against the portal's
// sign-on flow.
type LoginGateway interface {
	Handshake(ctx context.Context, creds domain.Credentials) (domain.Session, error)
}

// SessionProber asks the portal who the session belongs to; a successful
// probe proves the bundle is still honored server-side.
type SessionProber interface {
	Probe(ctx context.Context, session *domain.Session) (domain.PortalUser, error)
}
