package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
	"github.com/brdocs/docket/internal/retry"
)

type BatchTiming struct {
	MinInitialWait   time.Duration
	PollInterval     time.Duration
	MaxWait          time.Duration
	StagnationWindow time.Duration
	PauseMin         time.Duration
	PauseMax         time.Duration
}

func (t BatchTiming) withDefaults() BatchTiming {
	if t.MinInitialWait <= 0 {
		t.MinInitialWait = 15 * time.Second
	}
	if t.PollInterval <= 0 {
		t.PollInterval = 15 * time.Second
	}
	if t.MaxWait <= 0 {
		t.MaxWait = 5 * time.Minute
	}
	if t.StagnationWindow <= 0 {
		t.StagnationWindow = 3 * t.PollInterval
	}
	if t.PauseMin <= 0 {
		t.PauseMin = time.Second
	}
	if t.PauseMax < t.PauseMin {
		t.PauseMax = 3 * t.PauseMin
	}

	return t
}

type BatchSpec struct {
	Queue        string
	Context      string
	DocumentType domain.DocumentType
	Cases        []domain.CaseRef
	Destination  string
	Timing       BatchTiming
	RetryFailed  bool
}

type BatchService struct {
	submitter ports.SubmitGateway
	pickup    ports.PickupGateway
	reports   ports.ReportWriter
	history   ports.HistoryRepository
	clock     ports.Clock
	logger    *slog.Logger
}

func NewBatchService(submitter ports.SubmitGateway, pickup ports.PickupGateway, reports ports.ReportWriter, history ports.HistoryRepository, clock ports.Clock, logger *slog.Logger) *BatchService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BatchService{
		submitter: submitter,
		pickup:    pickup,
		reports:   reports,
		history:   history,
		clock:     clock,
		logger:    logger,
	}
}

func (s *BatchService) Run(ctx context.Context, sess *domain.Session, spec BatchSpec) (domain.BatchReport, error) {
	if len(spec.Cases) == 0 {
		return domain.BatchReport{}, fmt.Errorf("no cases to submit")
	}
	spec.Timing = spec.Timing.withDefaults()

	started := s.clock.Now()
	batchID := uuid.NewString()

	ledger := NewLedger(s.clock)
	recorder := NewRecorder(s.clock)

	var contextID int64
	if sess != nil && sess.User != nil {
		contextID = sess.User.ContextID
	}

	cases := make([]domain.CaseRef, 0, len(spec.Cases))
	for _, ref := range spec.Cases {
		req := domain.RetrievalRequest{
			ID:           uuid.NewString(),
			Case:         ref,
			DocumentType: spec.DocumentType,
			Destination:  spec.Destination,
			ContextID:    contextID,
			Attempt:      1,
		}
		if err := ledger.Register(req); err != nil {
			s.logger.Warn("duplicate case skipped", "case", ref.Number)
			continue
		}
		cases = append(cases, ref)
	}
	spec.Cases = cases

	s.logger.Info("batch started", "batch", batchID, "queue", spec.Queue, "cases", len(cases))

	submitDone := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(submitDone)
		return s.submitAll(gctx, sess, ledger, recorder, spec)
	})
	g.Go(func() error {
		return s.poll(gctx, sess, ledger, recorder, spec.Timing, spec.Destination, submitDone)
	})

	runErr := g.Wait()

	if runErr == nil {
		for _, number := range ledger.UnclaimedQueued() {
			recorder.RecordStage(number, 0, domain.StagePollMatch, false, "no pickup item matched within wait budget")
			if err := ledger.Settle(number, domain.StateNotFound, "", "not matched before deadline"); err != nil {
				s.logger.Warn("settle unmatched case", "case", number, "error", err)
			}
		}

		if spec.RetryFailed {
			s.retryFailedFetches(ctx, sess, ledger, recorder, spec.Destination)
		}
	}

	results := ledger.Snapshot()
	report := domain.BatchReport{
		BatchID:      batchID,
		Queue:        spec.Queue,
		Context:      spec.Context,
		DocumentType: spec.DocumentType,
		Destination:  spec.Destination,
		StartedAt:    started,
		FinishedAt:   s.clock.Now(),
		Results:      results,
		Diagnostics:  recorder.All(),
		Counts:       domain.CountResults(results),
	}

	if runErr != nil {
		return report, runErr
	}

	reportPath := ""
	if s.reports != nil {
		path, err := s.reports.Write(ctx, report)
		if err != nil {
			s.logger.Warn("write batch report", "error", err)
		} else {
			reportPath = path
		}
	}
	if s.history != nil {
		if err := s.history.SaveBatch(ctx, report, reportPath); err != nil {
			s.logger.Warn("save batch history", "error", err)
		}
	}

	s.logger.Info("batch finished",
		"batch", batchID,
		"downloaded", report.Counts.Downloaded,
		"rejected", report.Counts.Rejected,
		"not_found", report.Counts.NotFound,
		"fetch_failed", report.Counts.FetchFailed)

	return report, nil
}

func (s *BatchService) submitAll(ctx context.Context, sess *domain.Session, ledger *Ledger, recorder *Recorder, spec BatchSpec) error {
	for i, ref := range spec.Cases {
		if i > 0 {
			if err := retry.SleepBetween(ctx, spec.Timing.PauseMin, spec.Timing.PauseMax); err != nil {
				return err
			}
		}

		req, ok := ledger.RequestFor(ref.Number)
		if !ok {
			continue
		}
		ledger.NoteSubmitted(ref.Number)

		result, stages, err := s.submitter.Submit(ctx, sess, req)
		recorder.Append(stages...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("submission failed", "case", ref.Number, "error", err)
			if merr := ledger.MarkRejected(ref.Number, err.Error()); merr != nil {
				s.logger.Warn("mark rejected", "case", ref.Number, "error", merr)
			}
			continue
		}

		switch result.Kind {
		case domain.SubmissionDirect:
			if merr := ledger.MarkDirect(ref.Number, result.ArtifactURL); merr != nil {
				s.logger.Warn("mark direct", "case", ref.Number, "error", merr)
				continue
			}
			s.fetchDirect(ctx, sess, ledger, recorder, ref.Number, result.ArtifactURL, spec.Destination)
		case domain.SubmissionDeferred:
			if merr := ledger.MarkQueued(ref.Number); merr != nil {
				s.logger.Warn("mark queued", "case", ref.Number, "error", merr)
			}
		case domain.SubmissionRejected:
			if merr := ledger.MarkRejected(ref.Number, result.Reason); merr != nil {
				s.logger.Warn("mark rejected", "case", ref.Number, "error", merr)
			}
		}
	}

	return nil
}

// poll watches the pickup area until every deferred case is settled or the
// wait budget runs out. No listing happens before MinInitialWait: the portal
// needs time to generate anything at all.
func (s *BatchService) poll(ctx context.Context, sess *domain.Session, ledger *Ledger, recorder *Recorder, timing BatchTiming, destDir string, submitDone <-chan struct{}) error {
	initial := time.NewTimer(timing.MinInitialWait)
	select {
	case <-ctx.Done():
		if !initial.Stop() {
			<-initial.C
		}
		return ctx.Err()
	case <-submitDone:
		if ledger.QueuedRemaining() == 0 {
			// Nothing was deferred; there is nothing to poll for.
			if !initial.Stop() {
				<-initial.C
			}
			return nil
		}
		select {
		case <-ctx.Done():
			if !initial.Stop() {
				<-initial.C
			}
			return ctx.Err()
		case <-initial.C:
		}
	case <-initial.C:
	}

	deadline := s.clock.Now().Add(timing.MaxWait)
	lastMatch := s.clock.Now()

	for {
		items, err := s.pickup.Available(ctx, sess)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("pickup listing failed", "error", err)
		} else {
			claims := ledger.Match(items)
			for _, claim := range claims {
				for _, number := range claim.Cases {
					recorder.RecordStage(number, 0, domain.StagePollMatch, true, fmt.Sprintf("matched pickup item %s", claim.Item.Handle))
				}
				s.fetchClaim(ctx, sess, ledger, recorder, claim, destDir)
			}
			if len(claims) > 0 {
				lastMatch = s.clock.Now()
			}
		}

		done := closed(submitDone)
		remaining := ledger.QueuedRemaining()
		if done && remaining == 0 {
			return nil
		}

		now := s.clock.Now()
		if !now.Before(deadline) {
			s.logger.Warn("pickup wait budget exhausted", "unresolved", remaining)
			return nil
		}
		if done && now.Sub(lastMatch) >= timing.StagnationWindow {
			s.logger.Warn("no new pickup matches, stopping early", "unresolved", remaining)
			return nil
		}

		if err := retry.Sleep(ctx, timing.PollInterval); err != nil {
			return err
		}
	}
}

func (s *BatchService) fetchClaim(ctx context.Context, sess *domain.Session, ledger *Ledger, recorder *Recorder, claim Claim, destDir string) {
	path, err := s.pickup.FetchArtifact(ctx, sess, claim.Item, destDir)
	for _, number := range claim.Cases {
		if err != nil {
			recorder.RecordStage(number, 0, domain.StageFetch, false, err.Error())
			if serr := ledger.Settle(number, domain.StateFetchFailed, "", fmt.Sprintf("fetch %s: %v", claim.Item.Handle, err)); serr != nil {
				s.logger.Warn("settle fetch failure", "case", number, "error", serr)
			}
			continue
		}

		recorder.RecordStage(number, 0, domain.StageFetch, true, path)
		if serr := ledger.Settle(number, domain.StateDownloaded, path, ""); serr != nil {
			s.logger.Warn("settle download", "case", number, "error", serr)
		}
	}
}

func (s *BatchService) fetchDirect(ctx context.Context, sess *domain.Session, ledger *Ledger, recorder *Recorder, number, url, destDir string) {
	path, err := s.pickup.FetchDirect(ctx, url, number, destDir)
	if err != nil {
		recorder.RecordStage(number, 0, domain.StageFetch, false, err.Error())
		if serr := ledger.Settle(number, domain.StateFetchFailed, "", fmt.Sprintf("direct fetch: %v", err)); serr != nil {
			s.logger.Warn("settle fetch failure", "case", number, "error", serr)
		}
		return
	}

	recorder.RecordStage(number, 0, domain.StageFetch, true, path)
	if serr := ledger.Settle(number, domain.StateDownloaded, path, ""); serr != nil {
		s.logger.Warn("settle download", "case", number, "error", serr)
	}
}

// retryFailedFetches gives every fetch-failed case one more chance, as a
// fresh attempt in the ledger.
func (s *BatchService) retryFailedFetches(ctx context.Context, sess *domain.Session, ledger *Ledger, recorder *Recorder, destDir string) {
	failed := ledger.FetchFailed()
	if len(failed) == 0 {
		return
	}

	s.logger.Info("retrying failed fetches", "count", len(failed))

	var byHandle map[string]domain.PickupItem
	for _, outcome := range failed {
		number := outcome.Request.Case.Number

		switch {
		case outcome.PickupHandle != "":
			if byHandle == nil {
				items, err := s.pickup.Available(ctx, sess)
				if err != nil {
					s.logger.Warn("pickup listing for retry failed", "error", err)
					return
				}
				byHandle = make(map[string]domain.PickupItem, len(items))
				for _, item := range items {
					byHandle[item.Handle] = item
				}
			}

			item, ok := byHandle[outcome.PickupHandle]
			if !ok {
				s.logger.Warn("pickup item no longer listed", "case", number, "handle", outcome.PickupHandle)
				continue
			}
			if err := s.reopenQueued(ledger, number, outcome.PickupHandle); err != nil {
				s.logger.Warn("reopen case", "case", number, "error", err)
				continue
			}
			s.fetchClaim(ctx, sess, ledger, recorder, Claim{Item: item, Cases: []string{number}}, destDir)

		case outcome.DirectURL != "":
			if err := ledger.Reopen(number); err != nil {
				s.logger.Warn("reopen case", "case", number, "error", err)
				continue
			}
			if err := ledger.MarkDirect(number, outcome.DirectURL); err != nil {
				s.logger.Warn("mark direct on retry", "case", number, "error", err)
				continue
			}
			s.fetchDirect(ctx, sess, ledger, recorder, number, outcome.DirectURL, destDir)
		}
	}
}

func (s *BatchService) reopenQueued(ledger *Ledger, number, handle string) error {
	if err := ledger.Reopen(number); err != nil {
		return err
	}
	if err := ledger.MarkQueued(number); err != nil {
		return err
	}
	if !ledger.Reclaim(number, handle) {
		return fmt.Errorf("reclaim %s for retry", number)
	}

	return nil
}

func closed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
