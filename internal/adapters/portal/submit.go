package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/retry"
)

const (
	accessKeyPathPrefix = "/workdesk/case-access-key/"
	caseRecordsPath     = "/portal/case/records"
)

// Reply classification goes by the portal's own wording. Both generation
// phrases together mean the bundle is being built in this response; either
// availability phrase means it was queued for the pickup area.
const (
	markerGenerating   = "is being generated"
	markerPleaseWait   = "please wait"
	markerWillBeQueued = "will be made available"
	markerDownloadArea = "download area"
)

// A failed stage classifies the submission as rejected instead of erroring.
type SubmitClient struct {
	client   *Client
	pauseMin time.Duration
	pauseMax time.Duration
}

func NewSubmitClient(client *Client, pauseMin, pauseMax time.Duration) *SubmitClient {
	return &SubmitClient{client: client, pauseMin: pauseMin, pauseMax: pauseMax}
}

type submitTrail struct {
	caseNumber string
	caseID     int64
	entries    []domain.DiagnosticEntry
}

func (t *submitTrail) add(stage string, ok bool, message string) {
	t.entries = append(t.entries, domain.DiagnosticEntry{
		CaseNumber: t.caseNumber,
		CaseID:     t.caseID,
		Stage:      stage,
		OK:         ok,
		Message:    message,
	})
}

func (s *SubmitClient) Submit(ctx context.Context, sess *domain.Session, req domain.RetrievalRequest) (domain.SubmissionResult, []domain.DiagnosticEntry, error) {
	trail := &submitTrail{caseNumber: req.Case.Number, caseID: req.Case.ID}

	rejected := func(stage, message string) (domain.SubmissionResult, []domain.DiagnosticEntry, error) {
		trail.add(stage, false, message)
		return domain.SubmissionResult{Kind: domain.SubmissionRejected, Reason: message}, trail.entries, nil
	}

	accessKey, err := s.caseAccessKey(ctx, sess, req.Case.ID)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SubmissionResult{}, trail.entries, ctx.Err()
		}
		return rejected(domain.StageAccessKey, err.Error())
	}
	trail.add(domain.StageAccessKey, true, "access key issued")

	if err := retry.SleepBetween(ctx, s.pauseMin, s.pauseMax); err != nil {
		return domain.SubmissionResult{}, trail.entries, err
	}

	detailURL := s.client.pageURL(caseRecordsPath) + "?" + url.Values{
		"caseId":    {fmt.Sprintf("%d", req.Case.ID)},
		"accessKey": {accessKey},
	}.Encode()

	page, err := s.openCaseRecords(ctx, sess, detailURL)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SubmissionResult{}, trail.entries, ctx.Err()
		}
		return rejected(domain.StageOpenCase, err.Error())
	}
	trail.add(domain.StageOpenCase, true, fmt.Sprintf("records page loaded (%d bytes)", len(page)))

	viewState := extractViewState(page)
	if viewState == "" {
		return rejected(domain.StageViewState, "view state not found")
	}

	controlID := extractDownloadControl(page)
	if controlID == "" {
		return rejected(domain.StageSubmit, "download control not found")
	}
	trail.add(domain.StageViewState, true, "control "+controlID)

	if err := retry.SleepBetween(ctx, s.pauseMin, s.pauseMax); err != nil {
		return domain.SubmissionResult{}, trail.entries, err
	}

	reply, err := s.postRetrievalForm(ctx, sess, req, detailURL, viewState, controlID)
	if err != nil {
		if ctx.Err() != nil {
			return domain.SubmissionResult{}, trail.entries, ctx.Err()
		}
		return rejected(domain.StageSubmit, err.Error())
	}

	result := classifyReply(reply)
	switch result.Kind {
	case domain.SubmissionDirect:
		trail.add(domain.StageSubmit, true, "direct artifact link issued")
	case domain.SubmissionDeferred:
		trail.add(domain.StageSubmit, true, "queued for the pickup area")
	default:
		trail.add(domain.StageSubmit, false, result.Reason)
	}

	return result, trail.entries, nil
}

func (s *SubmitClient) caseAccessKey(ctx context.Context, sess *domain.Session, caseID int64) (string, error) {
	reqCtx, cancel := s.client.requestContext(ctx)
	defer cancel()

	endpoint := s.client.apiURL(fmt.Sprintf("%s%d", accessKeyPathPrefix, caseID))
	req, err := s.client.newRequest(reqCtx, http.MethodGet, endpoint, nil, sess)
	if err != nil {
		return "", err
	}
	s.client.apiHeaders(req, sess)

	resp, err := s.client.do(req, sess)
	if err != nil {
		return "", fmt.Errorf("request access key: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("request access key: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBytes))
	if err != nil {
		return "", fmt.Errorf("read access key: %w", err)
	}

	key := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if key == "" {
		return "", fmt.Errorf("empty access key")
	}

	return key, nil
}

func (s *SubmitClient) openCaseRecords(ctx context.Context, sess *domain.Session, detailURL string) (string, error) {
	reqCtx, cancel := s.client.requestContext(ctx)
	defer cancel()

	req, err := s.client.newRequest(reqCtx, http.MethodGet, detailURL, nil, sess)
	if err != nil {
		return "", err
	}

	resp, err := s.client.do(req, sess)
	if err != nil {
		return "", fmt.Errorf("open case records: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("open case records: status %d", resp.StatusCode)
	}

	return readPage(resp)
}

func (s *SubmitClient) postRetrievalForm(ctx context.Context, sess *domain.Session, req domain.RetrievalRequest, referer, viewState, controlID string) (string, error) {
	currentMonth := time.Now().Format("01/2006")

	form := url.Values{}
	form.Set("AJAXREQUEST", "_viewRoot")
	form.Set("navbar:documentType", req.DocumentType.FormCode())
	form.Set("navbar:fromId", "")
	form.Set("navbar:toId", "")
	form.Set("navbar:startDateInput", "")
	form.Set("navbar:startDateCurrent", currentMonth)
	form.Set("navbar:endDateInput", "")
	form.Set("navbar:endDateCurrent", currentMonth)
	form.Set("navbar:sortOrder", "DESC")
	form.Set("", "on")
	form.Set("navbar", "navbar")
	form.Set("autoScroll", "")
	form.Set("javax.faces.ViewState", viewState)
	form.Set(controlID, controlID)
	form.Set("AJAX:EVENTS_COUNT", "1")

	reqCtx, cancel := s.client.requestContext(ctx)
	defer cancel()

	httpReq, err := s.client.newRequest(reqCtx, http.MethodPost, s.client.pageURL(caseRecordsPath), strings.NewReader(form.Encode()), sess)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Origin", strings.TrimRight(s.client.cfg.BaseURL, "/"))
	httpReq.Header.Set("Referer", referer)

	resp, err := s.client.do(httpReq, sess)
	if err != nil {
		return "", fmt.Errorf("post retrieval form: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("post retrieval form: status %d", resp.StatusCode)
	}

	return readPage(resp)
}

func classifyReply(reply string) domain.SubmissionResult {
	lower := strings.ToLower(reply)

	direct := strings.Contains(lower, markerGenerating) && strings.Contains(lower, markerPleaseWait)
	deferred := strings.Contains(lower, markerWillBeQueued) || strings.Contains(lower, markerDownloadArea)

	if direct {
		if artifactURL := extractDirectURL(reply); artifactURL != "" {
			return domain.SubmissionResult{Kind: domain.SubmissionDirect, ArtifactURL: artifactURL}
		}
		// Generated synchronously but no link in the reply: the bundle still
		// lands in the pickup area, so treat it as queued.
		return domain.SubmissionResult{Kind: domain.SubmissionDeferred}
	}
	if deferred {
		return domain.SubmissionResult{Kind: domain.SubmissionDeferred}
	}

	return domain.SubmissionResult{Kind: domain.SubmissionRejected, Reason: "unrecognized submission reply"}
}
