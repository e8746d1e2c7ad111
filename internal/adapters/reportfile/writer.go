package reportfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

const reportFileMode = 0o644

type Writer struct{}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

type reportPayload struct {
	BatchID      string            `json:"batchId"`
	Queue        string            `json:"queue,omitempty"`
	Context      string            `json:"context,omitempty"`
	DocumentType string            `json:"documentType"`
	Destination  string            `json:"destination"`
	StartedAt    time.Time         `json:"startedAt"`
	FinishedAt   time.Time         `json:"finishedAt"`
	Counts       countsPayload     `json:"counts"`
	Cases        []casePayload     `json:"cases"`
	Diagnostics  []diagnosticEntry `json:"diagnostics,omitempty"`
}

type countsPayload struct {
	Submitted   int `json:"submitted"`
	Direct      int `json:"direct"`
	Deferred    int `json:"deferred"`
	Downloaded  int `json:"downloaded"`
	NotFound    int `json:"notFound"`
	Rejected    int `json:"rejected"`
	FetchFailed int `json:"fetchFailed"`
}

type casePayload struct {
	CaseNumber   string    `json:"caseNumber"`
	CaseID       int64     `json:"caseId,omitempty"`
	State        string    `json:"state"`
	Kind         string    `json:"kind,omitempty"`
	PickupHandle string    `json:"pickupHandle,omitempty"`
	ArtifactPath string    `json:"artifactPath,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Attempt      int       `json:"attempt"`
	SubmittedAt  time.Time `json:"submittedAt"`
	ResolvedAt   time.Time `json:"resolvedAt"`
}

type diagnosticEntry struct {
	CaseNumber string    `json:"caseNumber,omitempty"`
	Stage      string    `json:"stage"`
	OK         bool      `json:"ok"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

func (w *Writer) Write(ctx context.Context, report domain.BatchReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if report.Destination == "" {
		return "", fmt.Errorf("report destination is empty")
	}

	if err := os.MkdirAll(report.Destination, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(toPayload(report), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(report.Destination, fmt.Sprintf("report-%s.json", report.BatchID))
	if err := os.WriteFile(path, data, reportFileMode); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}

	return path, nil
}

func toPayload(report domain.BatchReport) reportPayload {
	payload := reportPayload{
		BatchID:      report.BatchID,
		Queue:        report.Queue,
		Context:      report.Context,
		DocumentType: string(report.DocumentType),
		Destination:  report.Destination,
		StartedAt:    report.StartedAt,
		FinishedAt:   report.FinishedAt,
		Counts: countsPayload{
			Submitted:   report.Counts.Submitted,
			Direct:      report.Counts.Direct,
			Deferred:    report.Counts.Deferred,
			Downloaded:  report.Counts.Downloaded,
			NotFound:    report.Counts.NotFound,
			Rejected:    report.Counts.Rejected,
			FetchFailed: report.Counts.FetchFailed,
		},
		Cases: make([]casePayload, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		payload.Cases = append(payload.Cases, casePayload{
			CaseNumber:   res.Case.Number,
			CaseID:       res.Case.ID,
			State:        string(res.State),
			Kind:         string(res.Kind),
			PickupHandle: res.PickupHandle,
			ArtifactPath: res.ArtifactPath,
			Reason:       res.Reason,
			Attempt:      res.Attempt,
			SubmittedAt:  res.SubmittedAt,
			ResolvedAt:   res.ResolvedAt,
		})
	}

	for _, entry := range report.Diagnostics {
		payload.Diagnostics = append(payload.Diagnostics, diagnosticEntry{
			CaseNumber: entry.CaseNumber,
			Stage:      entry.Stage,
			OK:         entry.OK,
			Message:    entry.Message,
			At:         entry.At,
		})
	}

	return payload
}
