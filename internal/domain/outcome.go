package domain

import (
	"fmt"
	"time"
)

type OutcomeState string

const (
	StatePending     OutcomeState = "PENDING"
	StateDirectReady OutcomeState = "DIRECT_READY"
	StateQueued      OutcomeState = "QUEUED"
	StateDownloaded  OutcomeState = "DOWNLOADED"
	StateNotFound    OutcomeState = "NOT_FOUND"
	StateRejected    OutcomeState = "REJECTED"
	StateFetchFailed OutcomeState = "FETCH_FAILED"
)

var outcomeTransitions = map[OutcomeState][]OutcomeState{
	StatePending:     {StateDirectReady, StateQueued, StateRejected},
	StateDirectReady: {StateDownloaded, StateFetchFailed},
	StateQueued:      {StateDownloaded, StateNotFound, StateFetchFailed},
}

func (s OutcomeState) Terminal() bool {
	switch s {
	case StateDownloaded, StateNotFound, StateRejected, StateFetchFailed:
		return true
	default:
		return false
	}
}

func (s OutcomeState) CanTransition(to OutcomeState) bool {
	for _, next := range outcomeTransitions[s] {
		if next == to {
			return true
		}
	}

	return false
}

// RetrievalOutcome tracks one request from submission to a terminal state.
// State only ever moves forward; a retry is a fresh request with a bumped
// Attempt, never a reset of this one.
type RetrievalOutcome struct {
	Request      RetrievalRequest
	State        OutcomeState
	Kind         SubmissionKind
	PickupHandle string
	DirectURL    string
	ArtifactPath string
	Reason       string
	UpdatedAt    time.Time
}

func NewRetrievalOutcome(req RetrievalRequest, at time.Time) *RetrievalOutcome {
	return &RetrievalOutcome{
		Request:   req,
		State:     StatePending,
		UpdatedAt: at,
	}
}

func (o *RetrievalOutcome) Transition(to OutcomeState, at time.Time) error {
	if !o.State.CanTransition(to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.State, to)
	}

	o.State = to
	o.UpdatedAt = at

	return nil
}
