package ports

import (
	"context"
	"time"

	"github.com/brdocs/docket/internal/domain"
)

// SessionStore persists the cookie bundle between process runs. Load returns
// whatever was saved without judging freshness; Valid is the age check and
// nothing more, so a server-side revocation still surfaces only at probe time.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
	Valid(ctx context.Context, now time.Time, maxAge time.Duration) bool
	Clear(ctx context.Context) error
}
