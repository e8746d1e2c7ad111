package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdocs/docket/internal/domain"
)

func TestRenderFullyDownloadedBatch(t *testing.T) {
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	report := domain.BatchReport{
		BatchID:     "batch-1",
		Queue:       "Draft Judgment",
		Context:     "5th Civil Court / Clerk",
		Destination: "/tmp/bundles",
		StartedAt:   started,
		FinishedAt:  started.Add(200 * time.Second),
		Results: []domain.CaseResult{
			{Case: domain.CaseRef{Number: "0001-11"}, State: domain.StateDownloaded, Kind: domain.SubmissionDirect},
			{Case: domain.CaseRef{Number: "0002-22"}, State: domain.StateDownloaded, Kind: domain.SubmissionDeferred},
		},
	}
	report.Counts = domain.CountResults(report.Results)

	output, err := Render(report, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Batch Retrieval Summary")
	assert.Contains(t, output, "batch batch-1")
	assert.Contains(t, output, "queue Draft Judgment")
	assert.Contains(t, output, "submitted: 2  (direct 1, deferred 1)")
	assert.Contains(t, output, "downloaded 2")
	assert.Contains(t, output, "took 3m20s")
	assert.Contains(t, output, "artifacts: /tmp/bundles")
	assert.Contains(t, output, "Every bundle came home.")
	assert.NotContains(t, output, "Needs attention")
}

func TestRenderListsProblemCases(t *testing.T) {
	report := domain.BatchReport{
		BatchID: "batch-2",
		Queue:   "Dispatch",
		Results: []domain.CaseResult{
			{Case: domain.CaseRef{Number: "0001-11"}, State: domain.StateDownloaded, Kind: domain.SubmissionDirect},
			{Case: domain.CaseRef{Number: "0002-22"}, State: domain.StateNotFound, Kind: domain.SubmissionDeferred, Reason: "not matched before deadline"},
			{Case: domain.CaseRef{Number: "0003-33"}, State: domain.StateRejected, Kind: domain.SubmissionRejected, Reason: "unrecognized submission reply"},
			{Case: domain.CaseRef{Number: "0004-44"}, State: domain.StateFetchFailed, Kind: domain.SubmissionDeferred, Attempt: 2},
		},
	}
	report.Counts = domain.CountResults(report.Results)

	output, err := Render(report, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Needs attention")
	assert.Contains(t, output, "not found 0002-22")
	assert.Contains(t, output, "not matched before deadline")
	assert.Contains(t, output, "rejected 0003-33")
	assert.Contains(t, output, "fetch failed 0004-44")
	assert.Contains(t, output, "after 2 attempts")
	assert.NotContains(t, output, "Every bundle came home.")
}

func TestRenderEmptyReport(t *testing.T) {
	output, err := Render(domain.BatchReport{BatchID: "batch-3"}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "batch batch-3")
	assert.Contains(t, output, "No cases were submitted.")
}

func TestRenderTruncatesLongReasons(t *testing.T) {
	longReason := "the portal replied with a very long maintenance banner that keeps going and going and going and going and going"
	report := domain.BatchReport{
		BatchID: "batch-4",
		Results: []domain.CaseResult{
			{Case: domain.CaseRef{Number: "0001-11"}, State: domain.StateRejected, Kind: domain.SubmissionRejected, Reason: longReason},
		},
	}
	report.Counts = domain.CountResults(report.Results)

	output, err := Render(report, RenderOptions{Width: 60})

	require.NoError(t, err)
	assert.Contains(t, output, "rejected 0001-11")
	assert.Contains(t, output, "...")
	assert.NotContains(t, output, longReason)
}
