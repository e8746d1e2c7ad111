package reportfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdocs/docket/internal/domain"
)

func TestWriteProducesReadableReport(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	report := domain.BatchReport{
		BatchID:      "batch-1",
		Queue:        "Draft Judgment",
		DocumentType: domain.DocTypeJudgment,
		Destination:  dest,
		StartedAt:    started,
		FinishedAt:   started.Add(time.Minute),
		Results: []domain.CaseResult{
			{
				Case:         domain.CaseRef{ID: 5001, Number: "0001-11"},
				State:        domain.StateDownloaded,
				Kind:         domain.SubmissionDeferred,
				PickupHandle: "hash-a",
				ArtifactPath: filepath.Join(dest, "bundle-a.zip"),
				Attempt:      1,
			},
		},
		Diagnostics: []domain.DiagnosticEntry{
			{CaseNumber: "0001-11", Stage: domain.StageSubmit, OK: true, Message: "queued for the pickup area", At: started},
		},
	}
	report.Counts = domain.CountResults(report.Results)

	path, err := NewWriter().Write(context.Background(), report)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "report-batch-1.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "batch-1", decoded["batchId"])
	assert.Equal(t, "judgment", decoded["documentType"])

	counts, ok := decoded["counts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), counts["submitted"])
	assert.Equal(t, float64(1), counts["downloaded"])

	cases, ok := decoded["cases"].([]any)
	require.True(t, ok)
	require.Len(t, cases, 1)
	first, ok := cases[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "0001-11", first["caseNumber"])
	assert.Equal(t, "DOWNLOADED", first["state"])
	assert.Equal(t, "hash-a", first["pickupHandle"])

	diags, ok := decoded["diagnostics"].([]any)
	require.True(t, ok)
	require.Len(t, diags, 1)
}

func TestWriteRequiresDestination(t *testing.T) {
	t.Parallel()

	_, err := NewWriter().Write(context.Background(), domain.BatchReport{BatchID: "batch-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination")
}

func TestWriteCreatesDestination(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "nested", "bundles")

	path, err := NewWriter().Write(context.Background(), domain.BatchReport{
		BatchID:     "batch-2",
		Destination: dest,
	})

	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}
