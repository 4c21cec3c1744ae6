// Package types defines core domain types shared across grist components.
//
//nolint:revive // types is a common Go package naming convention
package types

// RunMeta identifies a single processing run.
// Every log entry and completion event carries these fields.
type RunMeta struct {
	// RunID is a UUID generated at run start.
	RunID string
	// Model is the inference model the run targets.
	Model string
	// Source is the raw source descriptor the run was invoked with.
	Source string
}

// RunOutcome describes how a run ended.
type RunOutcome string

const (
	// OutcomeCompleted indicates every file processed successfully.
	OutcomeCompleted RunOutcome = "completed"
	// OutcomePartial indicates the run finished but some files failed.
	OutcomePartial RunOutcome = "partial"
	// OutcomeFailed indicates no file produced a usable result.
	OutcomeFailed RunOutcome = "failed"
)

// OutcomeFor derives the run outcome from per-file counts.
func OutcomeFor(succeeded, failed int64) RunOutcome {
	switch {
	case failed == 0:
		return OutcomeCompleted
	case succeeded == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}
