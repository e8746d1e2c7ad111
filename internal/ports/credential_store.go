package ports

import (
	"context"

	"github.com/brdocs/docket/internal/domain"
)

type CredentialStore interface {
	Save(ctx context.Context, creds domain.Credentials) error
	Load(ctx context.Context) (domain.Credentials, error)
	Clear(ctx context.Context) error
}
