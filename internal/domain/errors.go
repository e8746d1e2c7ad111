package domain

import "errors"

var (
	ErrCredentialsMissing   = errors.New("credentials missing")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoSavedSession       = errors.New("no saved session")
	ErrSessionExpired       = errors.New("session expired")
	ErrContextNotFound      = errors.New("operating context not found")
	ErrQueueNotFound        = errors.New("work queue not found")
	ErrCaseAlreadyTracked   = errors.New("case already tracked")
	ErrInvalidTransition    = errors.New("invalid outcome transition")
	ErrPollTimeout          = errors.New("pickup polling timed out")
)
