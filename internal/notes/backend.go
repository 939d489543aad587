// Package notes is the note-creation boundary. The importer talks to a
// Backend; the AppleScript implementation drives Apple Notes, and the dry-run
// implementation records plans without side effects.
package notes

import (
	"context"

	"github.com/kalambet/dayone2notes/internal/plan"
)

// Status classifies a submission outcome.
type Status string

const (
	StatusCreated             Status = "created"
	StatusCreatedDegradedDate Status = "created_degraded_date"
	StatusCreatedTagFailure   Status = "created_tag_failure"
	StatusFailed              Status = "failed"
)

// Outcome is the backend's report for one submitted plan.
type Outcome struct {
	Status     Status
	FinalTitle string
	Reason     string
}

// Succeeded reports whether a note was created, possibly with degradations.
func (o Outcome) Succeeded() bool {
	return o.Status != StatusFailed
}

// Backend abstracts the target note-taking application. The importer checks
// IsReady once before any submission, ensures the target folder exists, then
// submits plans one at a time. Implementations own their call timeouts.
type Backend interface {
	// IsReady probes the backend once per run. A false result aborts the run
	// before any plan is submitted; the string explains why (or confirms how
	// readiness was established).
	IsReady(ctx context.Context) (bool, string)

	// EnsureFolder creates the target folder if it does not exist. An empty
	// name means the default folder and is a no-op.
	EnsureFolder(ctx context.Context, name string) error

	// Submit creates one note from the plan. Failures are reported in the
	// Outcome, never retried by the caller.
	Submit(ctx context.Context, p plan.Plan) Outcome
}
