package application

import (
	"sync"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

type Recorder struct {
	mu      sync.Mutex
	entries []domain.DiagnosticEntry
	clock   ports.Clock
}

func NewRecorder(clock ports.Clock) *Recorder {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Recorder{clock: clock}
}

func (r *Recorder) Record(entry domain.DiagnosticEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.At.IsZero() {
		entry.At = r.clock.Now()
	}
	r.entries = append(r.entries, entry)
}

func (r *Recorder) Append(entries ...domain.DiagnosticEntry) {
	for _, entry := range entries {
		r.Record(entry)
	}
}

func (r *Recorder) RecordStage(caseNumber string, caseID int64, stage string, ok bool, message string) {
	r.Record(domain.DiagnosticEntry{
		CaseNumber: caseNumber,
		CaseID:     caseID,
		Stage:      stage,
		OK:         ok,
		Message:    message,
	})
}

func (r *Recorder) EntriesFor(caseNumber string) []domain.DiagnosticEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.DiagnosticEntry
	for _, entry := range r.entries {
		if entry.CaseNumber == caseNumber {
			out = append(out, entry)
		}
	}

	return out
}

func (r *Recorder) All() []domain.DiagnosticEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.DiagnosticEntry, len(r.entries))
	copy(out, r.entries)

	return out
}
