// Package importer drives the whole pipeline: parse, index, resolve, convert,
// plan, submit. It is the error-aggregation and cancellation boundary; every
// per-entry failure ends up in the Summary, never in a returned error.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kalambet/dayone2notes/internal/convert"
	"github.com/kalambet/dayone2notes/internal/journal"
	"github.com/kalambet/dayone2notes/internal/media"
	"github.com/kalambet/dayone2notes/internal/notes"
	"github.com/kalambet/dayone2notes/internal/plan"
)

// ErrPreflight means the backend readiness probe failed. Nothing was
// submitted; the run has zero side effects.
var ErrPreflight = errors.New("backend not ready")

// ErrNoEntries means no file yielded a single entry.
var ErrNoEntries = errors.New("no importable entries across all inputs")

// Options configure a single run.
type Options struct {
	// ExportDir is the Day One export root (holds photos/ and videos/).
	ExportDir string
	// Files are the journal JSON files to import, in selection order.
	Files []string
	// Folder is the target folder name; empty means the default folder.
	Folder string
	// Offset skips that many entries from the concatenated sequence; Limit
	// caps how many are processed after the offset. Zero Limit means all.
	Offset int
	Limit  int
	// Progress, when set, is called before each entry is processed.
	Progress func(index, total int, title string)
}

// Importer runs one import batch against a backend.
type Importer struct {
	backend notes.Backend
	conv    *convert.Converter
	opts    Options
	logger  *slog.Logger
}

// New creates an Importer. The backend is the only injected collaborator;
// everything else is built per run.
func New(backend notes.Backend, opts Options) *Importer {
	return &Importer{
		backend: backend,
		conv:    convert.New(),
		opts:    opts,
		logger:  slog.Default(),
	}
}

// Run executes the batch. It returns an error only for whole-run failures
// (pre-flight, zero parseable entries, index build); everything else is
// recorded in the Summary, which is finalized exactly once — cancelled runs
// included. Once parsing has started the Summary comes back even alongside a
// fatal error, so per-file failures are never lost.
func (im *Importer) Run(ctx context.Context) (*Summary, error) {
	ready, msg := im.backend.IsReady(ctx)
	if !ready {
		return nil, fmt.Errorf("%w: %s", ErrPreflight, msg)
	}
	im.logger.Info("backend ready", "detail", msg)

	summary := &Summary{}

	exports, parseErrs := journal.ParseAll(im.opts.Files)
	for _, err := range parseErrs {
		var perr *journal.ParseError
		if errors.As(err, &perr) {
			summary.FailedFiles = append(summary.FailedFiles, FailedFile{Path: perr.Path, Message: perr.Cause})
		} else {
			summary.FailedFiles = append(summary.FailedFiles, FailedFile{Message: err.Error()})
		}
		im.logger.Warn("skipping unparseable file", "error", err)
	}

	var entries []journal.Entry
	for _, exp := range exports {
		entries = append(entries, exp.Entries...)
	}
	if len(entries) == 0 {
		return summary, ErrNoEntries
	}
	entries = applyRange(entries, im.opts.Offset, im.opts.Limit)
	if len(entries) == 0 {
		return summary, fmt.Errorf("%w (after --offset/--limit)", ErrNoEntries)
	}

	index, err := media.BuildIndex(ctx, im.opts.ExportDir)
	if err != nil {
		return summary, fmt.Errorf("building media index: %w", err)
	}
	im.logger.Info("media indexed", "photos", index.PhotoCount(), "videos", index.VideoCount())

	if err := im.backend.EnsureFolder(ctx, im.opts.Folder); err != nil {
		// Submissions may still land in the default folder; not fatal.
		im.logger.Warn("could not ensure target folder", "folder", im.opts.Folder, "error", err)
	}

	planner := plan.NewPlanner(im.opts.Folder, plan.NewTitleRegistry())

	total := len(entries)
	for i, entry := range entries {
		// Cancellation is checked only between entries; an in-flight
		// submission always runs to completion.
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		if im.opts.Progress != nil {
			im.opts.Progress(i+1, total, plan.DeriveTitle(entry.RawText))
		}

		summary.Attempted++
		im.processEntry(ctx, entry, index, planner, summary)
	}

	summary.Skipped = total - summary.Attempted
	return summary, nil
}

func (im *Importer) processEntry(ctx context.Context, entry journal.Entry, index *media.Index, planner *plan.Planner, summary *Summary) {
	body := im.conv.Convert(entry.RawText)

	resolved := index.Resolve(entry.MediaRefs())
	for _, r := range resolved {
		if r.Unresolved {
			summary.UnresolvedMedia = append(summary.UnresolvedMedia, UnresolvedMedia{
				EntryID:    entry.ID,
				Kind:       r.Ref.Kind,
				Identifier: r.Ref.Identifier,
			})
			im.logger.Warn("could not resolve media", "entry", entry.ID,
				"kind", r.Ref.Kind, "identifier", r.Ref.Identifier)
		}
	}
	for _, id := range entry.SkippedAudio {
		summary.SkippedMedia = append(summary.SkippedMedia, SkippedMedia{
			EntryID: entry.ID, Identifier: id, Reason: "audio attachments are not supported",
		})
	}

	pl, err := planner.Build(entry, body, resolved)
	if err != nil {
		summary.Failed++
		summary.EntryErrors = append(summary.EntryErrors, EntryError{EntryID: entry.ID, Message: err.Error()})
		im.logger.Error("planning failed", "entry", entry.ID, "error", err)
		return
	}

	outcome := im.backend.Submit(ctx, pl)
	if !outcome.Succeeded() {
		summary.Failed++
		summary.EntryErrors = append(summary.EntryErrors, EntryError{EntryID: entry.ID, Message: outcome.Reason})
		im.logger.Error("submission failed", "entry", entry.ID, "title", pl.Title, "reason", outcome.Reason)
		return
	}

	summary.Succeeded++
	switch outcome.Status {
	case notes.StatusCreatedDegradedDate:
		summary.DegradedDates++
		im.logger.Debug("date preserved in body", "entry", entry.ID, "reason", outcome.Reason)
	case notes.StatusCreatedTagFailure:
		// A warning, never an abort.
		summary.TagFailures++
		im.logger.Warn("tags not applied", "entry", entry.ID, "reason", outcome.Reason)
	}
	im.logger.Debug("note created", "entry", entry.ID, "title", outcome.FinalTitle)
}

func applyRange(entries []journal.Entry, offset, limit int) []journal.Entry {
	if offset > 0 {
		if offset >= len(entries) {
			return nil
		}
		entries = entries[offset:]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
