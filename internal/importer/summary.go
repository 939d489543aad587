package importer

import "github.com/kalambet/dayone2notes/internal/journal"

// FailedFile records a source file that could not be parsed.
type FailedFile struct {
	Path    string
	Message string
}

// UnresolvedMedia records a reference with no matching file.
type UnresolvedMedia struct {
	EntryID    string
	Kind       journal.MediaKind
	Identifier string
}

// SkippedMedia records a reference that is deliberately not imported, such as
// an audio attachment.
type SkippedMedia struct {
	EntryID    string
	Identifier string
	Reason     string
}

// EntryError records a per-entry failure (planning or submission).
type EntryError struct {
	EntryID string
	Message string
}

// Summary is the run's single source of truth. It is built incrementally and
// finalized exactly once, including for cancelled runs, so an import is
// always inspectable afterwards.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	// Skipped counts entries never started because the run was cancelled.
	Skipped   int
	Cancelled bool

	// DegradedDates and TagFailures count successful creations with a
	// degraded outcome.
	DegradedDates int
	TagFailures   int

	FailedFiles     []FailedFile
	UnresolvedMedia []UnresolvedMedia
	SkippedMedia    []SkippedMedia
	EntryErrors     []EntryError
}
