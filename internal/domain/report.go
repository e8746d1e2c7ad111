package domain

import "time"

type CaseResult struct {
	Case         CaseRef
	State        OutcomeState
	Kind         SubmissionKind
	PickupHandle string
	ArtifactPath string
	Reason       string
	Attempt      int
	SubmittedAt  time.Time
	ResolvedAt   time.Time
}

type BatchCounts struct {
	Submitted   int
	Direct      int
	Deferred    int
	Downloaded  int
	NotFound    int
	Rejected    int
	FetchFailed int
}

type BatchReport struct {
	BatchID      string
	Queue        string
	Context      string
	DocumentType DocumentType
	Destination  string
	StartedAt    time.Time
	FinishedAt   time.Time
	Results      []CaseResult
	Diagnostics  []DiagnosticEntry
	Counts       BatchCounts
}

func (r BatchReport) AllDownloaded() bool {
	if len(r.Results) == 0 {
		return false
	}

	for _, res := range r.Results {
		if res.State != StateDownloaded {
			return false
		}
	}

	return true
}

func CountResults(results []CaseResult) BatchCounts {
	counts := BatchCounts{Submitted: len(results)}
	for _, res := range results {
		switch res.Kind {
		case SubmissionDirect:
			counts.Direct++
		case SubmissionDeferred:
			counts.Deferred++
		}

		switch res.State {
		case StateDownloaded:
			counts.Downloaded++
		case StateNotFound:
			counts.NotFound++
		case StateRejected:
			counts.Rejected++
		case StateFetchFailed:
			counts.FetchFailed++
		}
	}

	return counts
}

type BatchSummary struct {
	BatchID    string
	Queue      string
	Context    string
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     BatchCounts
	ReportPath string
}

type CaseHistoryEntry struct {
	BatchID      string
	CaseNumber   string
	State        OutcomeState
	ArtifactPath string
	Attempt      int
	UpdatedAt    time.Time
}
