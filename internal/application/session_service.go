package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
	"github.com/brdocs/docket/internal/retry"
)

const DefaultSessionMaxAge = 8 * time.Hour

type SessionOptions struct {
	MaxAge     time.Duration
	LoginRetry retry.Policy
}

type SessionService struct {
	store   ports.SessionStore
	creds   ports.CredentialStore
	login   ports.LoginGateway
	prober  ports.SessionProber
	clock   ports.Clock
	maxAge  time.Duration
	retries retry.Policy
}

func NewSessionService(store ports.SessionStore, creds ports.CredentialStore, login ports.LoginGateway, prober ports.SessionProber, clock ports.Clock, opts SessionOptions) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultSessionMaxAge
	}
	if opts.LoginRetry.Attempts < 1 {
		opts.LoginRetry = retry.DefaultPolicy()
	}

	return &SessionService{
		store:   store,
		creds:   creds,
		login:   login,
		prober:  prober,
		clock:   clock,
		maxAge:  opts.MaxAge,
		retries: opts.LoginRetry,
	}
}

// EnsureAuthenticated fills sess with a bundle the portal honors: the saved
// bundle when it is young enough and the identity probe confirms it, a full
// handshake otherwise.
func (s *SessionService) EnsureAuthenticated(ctx context.Context, sess *domain.Session, force bool) error {
	if force {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear saved session: %w", err)
		}
	} else if s.restoreSaved(ctx, sess) {
		return nil
	}

	return s.handshake(ctx, sess)
}

func (s *SessionService) restoreSaved(ctx context.Context, sess *domain.Session) bool {
	if !s.store.Valid(ctx, s.clock.Now(), s.maxAge) {
		return false
	}

	saved, err := s.store.Load(ctx)
	if err != nil || !saved.HasCookies() {
		return false
	}

	sess.Replace(saved)

	user, err := s.prober.Probe(ctx, sess)
	if err != nil {
		return false
	}
	sess.User = &user

	return true
}

func (s *SessionService) handshake(ctx context.Context, sess *domain.Session) error {
	creds, err := s.resolveCredentials(ctx)
	if err != nil {
		return err
	}

	var fresh domain.Session
	err = retry.Do(ctx, s.retries, func(ctx context.Context) error {
		bundle, err := s.login.Handshake(ctx, creds)
		if err != nil {
			return err
		}
		fresh = bundle
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, err)
	}

	fresh.CapturedAt = s.clock.Now()
	sess.Replace(fresh)

	user, err := s.prober.Probe(ctx, sess)
	if err != nil {
		return fmt.Errorf("%w: probe after handshake: %v", domain.ErrAuthenticationFailed, err)
	}
	sess.User = &user

	if err := s.store.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (s *SessionService) resolveCredentials(ctx context.Context) (domain.Credentials, error) {
	creds, err := s.creds.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsMissing) {
			return domain.Credentials{}, err
		}
		return domain.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: %v", domain.ErrCredentialsMissing, err)
	}

	return creds, nil
}

func (s *SessionService) WhoAmI(ctx context.Context, sess *domain.Session) (domain.PortalUser, error) {
	user, err := s.prober.Probe(ctx, sess)
	if err != nil {
		return domain.PortalUser{}, fmt.Errorf("probe session: %w", err)
	}
	sess.User = &user

	return user, nil
}

func (s *SessionService) SavedSessionAge(ctx context.Context) (time.Duration, error) {
	saved, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	return s.clock.Now().Sub(saved.CapturedAt), nil
}

func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear saved session: %w", err)
	}

	sess.Replace(domain.Session{})

	return nil
}
