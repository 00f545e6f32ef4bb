package models

import "time"

// RunRecord is the Firestore document written at the end of every check.
// It is an audit trail only; nothing reads it back except the optional
// already-published guard.
type RunRecord struct {
	RunID        string    `firestore:"runId,omitempty"`
	Outcome      string    `firestore:"outcome,omitempty"`
	Downloaded   int       `firestore:"downloaded"`
	Skipped      int       `firestore:"skipped"`
	MergedFiles  int       `firestore:"mergedFiles"`
	ArchiveURI   string    `firestore:"archiveUri,omitempty"`
	ExecutionID  string    `firestore:"workflowExecutionId,omitempty"` // For traceability
	ErrorDetails string    `firestore:"errorDetails,omitempty"`
	StartedAt    time.Time `firestore:"startedAt,omitempty"`
	FinishedAt   time.Time `firestore:"finishedAt,omitempty"`
}
