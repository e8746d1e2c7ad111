package domain

import "time"

// RetrievalRequest asks the portal to assemble the full document bundle of
// one case. The portal reply carries no request identifier, so the case
// number is the only correlation key a request ever has.
type RetrievalRequest struct {
	ID           string
	Case         CaseRef
	DocumentType DocumentType
	Destination  string
	ContextID    int64
	SubmittedAt  time.Time
	Attempt      int
}

type SubmissionKind string

const (
	SubmissionDirect   SubmissionKind = "direct"
	SubmissionDeferred SubmissionKind = "deferred"
	SubmissionRejected SubmissionKind = "rejected"
)

type SubmissionResult struct {
	Kind        SubmissionKind
	ArtifactURL string
	Reason      string
}
