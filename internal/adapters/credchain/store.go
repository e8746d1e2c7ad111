package credchain

import (
	"context"
	"errors"
	"sync"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

type Store struct {
	primary  ports.CredentialStore
	fallback ports.CredentialStore
}

var _ ports.CredentialStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary credential store is nil")
	errNilFallbackStore = errors.New("fallback credential store is nil")
)

func NewStore(primary, fallback ports.CredentialStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary, fallback ports.CredentialStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

// Load resolves field-wise: a partial primary pair borrows the missing
// field from the fallback.
func (s *Store) Load(ctx context.Context) (domain.Credentials, error) {
	primary, err := s.primary.Load(ctx)
	if err != nil {
		if shouldSkipFallback(err) {
			return domain.Credentials{}, err
		}
		if !errors.Is(err, domain.ErrCredentialsMissing) {
			return domain.Credentials{}, err
		}
		primary = domain.Credentials{}
	}
	if primary.Validate() == nil {
		return primary, nil
	}

	fallback, err := s.fallback.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialsMissing) {
			return domain.Credentials{}, err
		}
		if primary.Username == "" && primary.Password == "" {
			return domain.Credentials{}, domain.ErrCredentialsMissing
		}
		return primary, nil
	}

	if primary.Username != "" {
		fallback.Username = primary.Username
	}
	if primary.Password != "" {
		fallback.Password = primary.Password
	}

	return fallback, nil
}

func (s *Store) Save(ctx context.Context, creds domain.Credentials) error {
	return s.fallback.Save(ctx, creds)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.primary.Clear(ctx); err != nil {
		return err
	}

	return s.fallback.Clear(ctx)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type Override struct {
	mu    sync.RWMutex
	creds domain.Credentials
}

var _ ports.CredentialStore = (*Override)(nil)

func NewOverride() *Override {
	return &Override{}
}

// Overlay replaces only the fields the caller provided.
func (o *Override) Overlay(creds domain.Credentials) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if creds.Username != "" {
		o.creds.Username = creds.Username
	}
	if creds.Password != "" {
		o.creds.Password = creds.Password
	}
}

func (o *Override) Load(ctx context.Context) (domain.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return domain.Credentials{}, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.creds.Username == "" && o.creds.Password == "" {
		return domain.Credentials{}, domain.ErrCredentialsMissing
	}

	return o.creds, nil
}

func (o *Override) Save(ctx context.Context, creds domain.Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.creds = creds

	return nil
}

func (o *Override) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.creds = domain.Credentials{}

	return nil
}
