package domain

import "time"

const (
	StageAuthenticate  = "authenticate"
	StageSelectContext = "select-context"
	StageResolveQueue  = "resolve-queue"
	StageAccessKey     = "access-key"
	StageOpenCase      = "open-case"
	StageViewState     = "view-state"
	StageSubmit        = "submit"
	StagePollMatch     = "poll-match"
	StageFetch         = "fetch"
)

// DiagnosticEntry records one stage of one retrieval attempt, success or
// failure. Entries are append-only; nothing ever rewrites an earlier stage.
type DiagnosticEntry struct {
	CaseNumber string
	CaseID     int64
	Stage      string
	OK         bool
	Message    string
	At         time.Time
}
