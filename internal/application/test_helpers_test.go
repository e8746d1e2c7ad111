package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

var (
	_ ports.Clock             = (*fakeClock)(nil)
	_ ports.SessionStore      = (*mockSessionStore)(nil)
	_ ports.CredentialStore   = (*mockCredentialStore)(nil)
	_ ports.LoginGateway      = (*mockLoginGateway)(nil)
	_ ports.SessionProber     = (*mockProber)(nil)
	_ ports.ContextGateway    = (*mockContextGateway)(nil)
	_ ports.QueueGateway      = (*mockQueueGateway)(nil)
	_ ports.SubmitGateway     = (*mockSubmitGateway)(nil)
	_ ports.PickupGateway     = (*mockPickupGateway)(nil)
	_ ports.ReportWriter      = (*mockReportWriter)(nil)
	_ ports.HistoryRepository = (*mockHistory)(nil)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockSessionStore struct {
	mu       sync.Mutex
	saved    *domain.Session
	valid    bool
	loadErr  error
	saveErr  error
	clearErr error
	cleared  bool
}

func (m *mockSessionStore) Save(ctx context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &session
	return nil
}

func (m *mockSessionStore) Load(ctx context.Context) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return domain.Session{}, m.loadErr
	}
	if m.saved == nil {
		return domain.Session{}, domain.ErrNoSavedSession
	}
	return *m.saved, nil
}

func (m *mockSessionStore) Valid(ctx context.Context, now time.Time, maxAge time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.valid
}

func (m *mockSessionStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.saved = nil
	m.cleared = true
	return nil
}

type mockCredentialStore struct {
	creds   domain.Credentials
	loadErr error
}

func (m *mockCredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	m.creds = creds
	return nil
}

func (m *mockCredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	if m.loadErr != nil {
		return domain.Credentials{}, m.loadErr
	}
	return m.creds, nil
}

func (m *mockCredentialStore) Clear(ctx context.Context) error {
	m.creds = domain.Credentials{}
	return nil
}

type mockLoginGateway struct {
	mu      sync.Mutex
	session domain.Session
	errs    []error
	calls   int
}

func (m *mockLoginGateway) Handshake(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return domain.Session{}, err
		}
	}
	return m.session, nil
}

func (m *mockLoginGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockProber struct {
	mu    sync.Mutex
	user  domain.PortalUser
	errs  []error
	calls int
}

func (m *mockProber) Probe(ctx context.Context, session *domain.Session) (domain.PortalUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return domain.PortalUser{}, err
		}
	}
	return m.user, nil
}

type mockContextGateway struct {
	contexts  []domain.OperatingContext
	listErr   error
	selectErr error
	selected  *domain.OperatingContext
}

func (m *mockContextGateway) List(ctx context.Context, session *domain.Session) ([]domain.OperatingContext, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.contexts, nil
}

func (m *mockContextGateway) Select(ctx context.Context, session *domain.Session, target domain.OperatingContext) error {
	if m.selectErr != nil {
		return m.selectErr
	}
	m.selected = &target
	return nil
}

type mockQueueGateway struct {
	queues   []domain.Queue
	pages    [][]domain.CaseRef
	total    int
	listErr  error
	casesErr error
	requests []int
}

func (m *mockQueueGateway) Queues(ctx context.Context, session *domain.Session, starred bool) ([]domain.Queue, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.queues, nil
}

func (m *mockQueueGateway) Cases(ctx context.Context, session *domain.Session, queue string, starred bool, page, size int) ([]domain.CaseRef, int, error) {
	if m.casesErr != nil {
		return nil, 0, m.casesErr
	}
	m.requests = append(m.requests, page)
	if page >= len(m.pages) {
		return nil, m.total, nil
	}
	return m.pages[page], m.total, nil
}

// mockSubmitGateway classifies by a canned result per case number and emits
// the submit-stage diagnostic the way the portal gateway does.
type mockSubmitGateway struct {
	mu      sync.Mutex
	results map[string]domain.SubmissionResult
	errs    map[string]error
	order   []string
}

func (m *mockSubmitGateway) Submit(ctx context.Context, session *domain.Session, req domain.RetrievalRequest) (domain.SubmissionResult, []domain.DiagnosticEntry, error) {
	m.mu.Lock()
	m.order = append(m.order, req.Case.Number)
	m.mu.Unlock()

	if err := m.errs[req.Case.Number]; err != nil {
		stage := domain.DiagnosticEntry{CaseNumber: req.Case.Number, CaseID: req.Case.ID, Stage: domain.StageSubmit, OK: false, Message: err.Error()}
		return domain.SubmissionResult{}, []domain.DiagnosticEntry{stage}, err
	}

	result := m.results[req.Case.Number]
	stage := domain.DiagnosticEntry{CaseNumber: req.Case.Number, CaseID: req.Case.ID, Stage: domain.StageSubmit, OK: result.Kind != domain.SubmissionRejected, Message: string(result.Kind)}
	return result, []domain.DiagnosticEntry{stage}, nil
}

func (m *mockSubmitGateway) submitted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

type mockPickupGateway struct {
	mu          sync.Mutex
	listings    [][]domain.PickupItem
	listCalls   int
	listErr     error
	fetchErrs   map[string][]error
	fetchCalls  int
	directErrs  map[string][]error
	directCalls int
}

func (m *mockPickupGateway) Available(ctx context.Context, session *domain.Session) ([]domain.PickupItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	idx := m.listCalls
	m.listCalls++
	if len(m.listings) == 0 {
		return nil, nil
	}
	if idx >= len(m.listings) {
		idx = len(m.listings) - 1
	}
	return m.listings[idx], nil
}

func (m *mockPickupGateway) FetchArtifact(ctx context.Context, session *domain.Session, item domain.PickupItem, destDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	if errs := m.fetchErrs[item.Handle]; len(errs) > 0 {
		err := errs[0]
		m.fetchErrs[item.Handle] = errs[1:]
		if err != nil {
			return "", err
		}
	}
	return destDir + "/" + item.FileName, nil
}

func (m *mockPickupGateway) FetchDirect(ctx context.Context, url, caseNumber, destDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directCalls++
	if errs := m.directErrs[caseNumber]; len(errs) > 0 {
		err := errs[0]
		m.directErrs[caseNumber] = errs[1:]
		if err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%s/%s.pdf", destDir, caseNumber), nil
}

func (m *mockPickupGateway) artifactFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

type mockReportWriter struct {
	report *domain.BatchReport
	path   string
	err    error
}

func (m *mockReportWriter) Write(ctx context.Context, report domain.BatchReport) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.report = &report
	if m.path == "" {
		m.path = "/tmp/report.json"
	}
	return m.path, nil
}

type mockHistory struct {
	reports []domain.BatchReport
	paths   []string
	saveErr error
}

func (m *mockHistory) SaveBatch(ctx context.Context, report domain.BatchReport, reportPath string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.reports = append(m.reports, report)
	m.paths = append(m.paths, reportPath)
	return nil
}

func (m *mockHistory) RecentBatches(ctx context.Context, limit int) ([]domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockHistory) CaseOutcomes(ctx context.Context, caseNumber string) ([]domain.CaseHistoryEntry, error) {
	return nil, nil
}
