package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdocs/docket/internal/domain"
)

func TestRecorderStampsAndFilters(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	recorder := NewRecorder(newFakeClock(start))

	recorder.RecordStage("case-1", 7, domain.StageAccessKey, true, "key obtained")
	recorder.RecordStage("case-2", 8, domain.StageSubmit, false, "unexpected reply")
	recorder.Record(domain.DiagnosticEntry{CaseNumber: "case-1", Stage: domain.StageSubmit, OK: true, At: start.Add(time.Minute)})

	all := recorder.All()
	require.Len(t, all, 3)
	assert.Equal(t, start, all[0].At)
	assert.Equal(t, start.Add(time.Minute), all[2].At)

	forOne := recorder.EntriesFor("case-1")
	require.Len(t, forOne, 2)
	assert.Equal(t, domain.StageAccessKey, forOne[0].Stage)
	assert.Equal(t, domain.StageSubmit, forOne[1].Stage)
}

func TestRecorderAllReturnsCopy(t *testing.T) {
	recorder := NewRecorder(nil)
	recorder.RecordStage("case-1", 0, domain.StageSubmit, true, "sent")

	all := recorder.All()
	all[0].CaseNumber = "mutated"

	assert.Equal(t, "case-1", recorder.All()[0].CaseNumber)
}
