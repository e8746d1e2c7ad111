package application

import (
	"fmt"
	"sync"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

// Ledger reconciles retrieval requests with whatever later shows up in the
// pickup area. The portal's replies carry no request identifier, so the case
// number is the only correlation key.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*ledgerEntry
	order   []string
	clock   ports.Clock
}

type ledgerEntry struct {
	outcome *domain.RetrievalOutcome
	claimed bool
}

// Claim pairs one pickup item with every still-queued case it covers.
type Claim struct {
	Item  domain.PickupItem
	Cases []string
}

func NewLedger(clock ports.Clock) *Ledger {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Ledger{
		entries: map[string]*ledgerEntry{},
		clock:   clock,
	}
}

func (l *Ledger) Register(req domain.RetrievalRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	number := req.Case.Number
	if _, ok := l.entries[number]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCaseAlreadyTracked, number)
	}

	l.entries[number] = &ledgerEntry{outcome: domain.NewRetrievalOutcome(req, l.clock.Now())}
	l.order = append(l.order, number)

	return nil
}

func (l *Ledger) RequestFor(caseNumber string) (domain.RetrievalRequest, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return domain.RetrievalRequest{}, false
	}

	return e.outcome.Request, true
}

func (l *Ledger) NoteSubmitted(caseNumber string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[caseNumber]; ok {
		e.outcome.Request.SubmittedAt = l.clock.Now()
	}
}

func (l *Ledger) MarkDirect(caseNumber, artifactURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return fmt.Errorf("mark direct: unknown case %s", caseNumber)
	}
	if err := e.outcome.Transition(domain.StateDirectReady, l.clock.Now()); err != nil {
		return err
	}

	e.outcome.Kind = domain.SubmissionDirect
	e.outcome.DirectURL = artifactURL

	return nil
}

func (l *Ledger) MarkQueued(caseNumber string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return fmt.Errorf("mark queued: unknown case %s", caseNumber)
	}
	if err := e.outcome.Transition(domain.StateQueued, l.clock.Now()); err != nil {
		return err
	}

	e.outcome.Kind = domain.SubmissionDeferred

	return nil
}

func (l *Ledger) MarkRejected(caseNumber, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return fmt.Errorf("mark rejected: unknown case %s", caseNumber)
	}
	if err := e.outcome.Transition(domain.StateRejected, l.clock.Now()); err != nil {
		return err
	}

	e.outcome.Kind = domain.SubmissionRejected
	e.outcome.Reason = reason

	return nil
}

// Match claims every queued case covered by the given pickup items. The first
// item listing a case wins; a duplicate bundle in the pickup area is a no-op.
func (l *Ledger) Match(items []domain.PickupItem) []Claim {
	l.mu.Lock()
	defer l.mu.Unlock()

	var claims []Claim
	for _, item := range items {
		var won []string
		for _, number := range item.Cases {
			e, ok := l.entries[number]
			if !ok || e.claimed || e.outcome.State != domain.StateQueued {
				continue
			}

			e.claimed = true
			e.outcome.PickupHandle = item.Handle
			won = append(won, number)
		}
		if len(won) > 0 {
			claims = append(claims, Claim{Item: item, Cases: won})
		}
	}

	return claims
}

func (l *Ledger) Reclaim(caseNumber, handle string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok || e.claimed || e.outcome.State != domain.StateQueued {
		return false
	}

	e.claimed = true
	e.outcome.PickupHandle = handle

	return true
}

func (l *Ledger) Settle(caseNumber string, state domain.OutcomeState, artifactPath, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return fmt.Errorf("settle: unknown case %s", caseNumber)
	}
	if err := e.outcome.Transition(state, l.clock.Now()); err != nil {
		return err
	}

	e.outcome.ArtifactPath = artifactPath
	if reason != "" {
		e.outcome.Reason = reason
	}

	return nil
}

// Reopen replaces a fetch-failed outcome with a fresh attempt. The old
// attempt's pickup handle and direct link carry over.
func (l *Ledger) Reopen(caseNumber string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseNumber]
	if !ok {
		return fmt.Errorf("reopen: unknown case %s", caseNumber)
	}
	if e.outcome.State != domain.StateFetchFailed {
		return fmt.Errorf("reopen: case %s is %s, not %s", caseNumber, e.outcome.State, domain.StateFetchFailed)
	}

	req := e.outcome.Request
	req.Attempt++

	fresh := domain.NewRetrievalOutcome(req, l.clock.Now())
	fresh.Kind = e.outcome.Kind
	fresh.PickupHandle = e.outcome.PickupHandle
	fresh.DirectURL = e.outcome.DirectURL

	l.entries[caseNumber] = &ledgerEntry{outcome: fresh}

	return nil
}

func (l *Ledger) QueuedRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, e := range l.entries {
		if e.outcome.State == domain.StateQueued {
			n++
		}
	}

	return n
}

func (l *Ledger) UnclaimedQueued() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var numbers []string
	for _, number := range l.order {
		e := l.entries[number]
		if e.outcome.State == domain.StateQueued && !e.claimed {
			numbers = append(numbers, number)
		}
	}

	return numbers
}

func (l *Ledger) FetchFailed() []domain.RetrievalOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.RetrievalOutcome
	for _, number := range l.order {
		e := l.entries[number]
		if e.outcome.State == domain.StateFetchFailed {
			out = append(out, *e.outcome)
		}
	}

	return out
}

func (l *Ledger) Snapshot() []domain.CaseResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	results := make([]domain.CaseResult, 0, len(l.order))
	for _, number := range l.order {
		o := l.entries[number].outcome
		results = append(results, domain.CaseResult{
			Case:         o.Request.Case,
			State:        o.State,
			Kind:         o.Kind,
			PickupHandle: o.PickupHandle,
			ArtifactPath: o.ArtifactPath,
			Reason:       o.Reason,
			Attempt:      o.Request.Attempt,
			SubmittedAt:  o.Request.SubmittedAt,
			ResolvedAt:   o.UpdatedAt,
		})
	}

	return results
}
