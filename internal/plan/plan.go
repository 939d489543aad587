// Package plan builds immutable note-creation plans from parsed entries,
// their converted text, and their resolved media.
package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/dayone2notes/internal/journal"
	"github.com/kalambet/dayone2notes/internal/media"
)

// DateStrategy tells the backend how to preserve an entry's original
// creation timestamp.
type DateStrategy string

const (
	// StrategySetCreationDate asks the backend to set the note's creation
	// date. Backends that cannot honor it fall back to DateFallbackLine and
	// report the degradation in their outcome.
	StrategySetCreationDate DateStrategy = "set_creation_date"
	// StrategyAppendDateToBody prepends the precomputed date line.
	StrategyAppendDateToBody DateStrategy = "append_date_to_body"
	// StrategyNone applies when the entry carries no timestamp.
	StrategyNone DateStrategy = "none"
)

// Plan is the complete instruction set for creating one note. Once built it
// is never mutated; it is the only artifact the backend consumes.
type Plan struct {
	EntryID  string
	Title    string
	BodyHTML string
	Folder   string
	Tags     []string

	// MediaPaths holds only resolved attachments, photos before videos,
	// declared order preserved within each kind.
	MediaPaths []string

	DateStrategy DateStrategy
	CreatedAt    *time.Time
	// DateFallbackLine is the human-readable date the backend prepends when
	// it cannot set the creation date, e.g. "📅 May 15, 2023 at 10:30 AM".
	DateFallbackLine string
}

// PlanningError reports an internal invariant violation while building a
// plan. It is fatal for the affected entry only.
type PlanningError struct {
	EntryID string
	Cause   string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning entry %s: %s", e.EntryID, e.Cause)
}

// Planner turns entries into plans for a single target folder, claiming
// titles from its registry as it goes.
type Planner struct {
	folder   string
	registry *TitleRegistry
}

// NewPlanner creates a Planner targeting the given folder. An empty folder
// name means the backend's default folder.
func NewPlanner(folder string, registry *TitleRegistry) *Planner {
	return &Planner{folder: folder, registry: registry}
}

// Build combines an entry with its converted body and resolved media into a
// Plan. The title claim is the single registry read-pick-increment step, so
// repeated base titles number monotonically under sequential processing.
func (p *Planner) Build(e journal.Entry, bodyHTML string, resolved []media.Resolved) (Plan, error) {
	base := DeriveTitle(e.RawText)
	title := p.registry.Claim(p.folder, base)
	if title == "" {
		return Plan{}, &PlanningError{EntryID: e.ID, Cause: "empty title from registry"}
	}

	var paths []string
	for _, r := range resolved {
		if !r.Unresolved {
			paths = append(paths, r.Path)
		}
	}

	pl := Plan{
		EntryID:      e.ID,
		Title:        title,
		BodyHTML:     bodyHTML,
		Folder:       p.folder,
		Tags:         e.Tags,
		MediaPaths:   paths,
		DateStrategy: StrategyNone,
	}
	if e.CreatedAt != nil {
		t := *e.CreatedAt
		pl.DateStrategy = StrategySetCreationDate
		pl.CreatedAt = &t
		pl.DateFallbackLine = FormatDateLine(t)
	}
	return pl, nil
}

// DeriveTitle extracts a base title from entry text: the first non-empty
// line, leading heading and emphasis markers removed, truncated to 50 runes.
// It is pure and depends only on the text, never on registry state.
func DeriveTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "#")
		line = strings.Trim(line, "*_")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return truncateTitle(line)
	}
	return "Untitled Note"
}

func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:47]) + "..."
}

// FormatDateLine renders a timestamp as the fallback body line, in the
// timestamp's own zone.
func FormatDateLine(t time.Time) string {
	return "📅 " + t.Format("January 2, 2006 at 3:04 PM")
}
