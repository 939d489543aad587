// Package journal parses Day One JSON export files into normalized entries.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// MediaKind distinguishes the supported attachment types.
type MediaKind string

const (
	KindPhoto MediaKind = "photo"
	KindVideo MediaKind = "video"
)

// MediaRef is one photo or video reference declared by an entry.
// OrderInEntry is the position within the entry's reference list for that
// kind and defines attachment order.
type MediaRef struct {
	Kind         MediaKind
	Identifier   string
	MD5          string
	OrderInEntry int
}

// Entry is one normalized journal record. ID is kept for traceability only
// and never participates in title deduplication.
type Entry struct {
	ID           string
	RawText      string
	CreatedAt    *time.Time
	Photos       []MediaRef
	Videos       []MediaRef
	SkippedAudio []string
	Tags         []string
}

// MediaRefs returns photos followed by videos, each in declared order.
func (e Entry) MediaRefs() []MediaRef {
	refs := make([]MediaRef, 0, len(e.Photos)+len(e.Videos))
	refs = append(refs, e.Photos...)
	refs = append(refs, e.Videos...)
	return refs
}

// Export is the parsed contents of a single source file. Entries keep file
// order; exports are concatenated by the caller, never merged.
type Export struct {
	Path    string
	Entries []Entry
}

// ParseError reports a malformed source file. It is localized to that file
// and never aborts parsing of sibling files.
type ParseError struct {
	Path  string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Path, e.Cause)
}

// rawExport mirrors the Day One JSON shape. Unknown fields are ignored.
type rawExport struct {
	Entries *[]rawEntry `json:"entries"`
}

type rawEntry struct {
	UUID         string     `json:"uuid"`
	Text         string     `json:"text"`
	CreationDate string     `json:"creationDate"`
	Photos       []rawMedia `json:"photos"`
	Videos       []rawMedia `json:"videos"`
	Audios       []rawMedia `json:"audios"`
	Tags         []string   `json:"tags"`
}

type rawMedia struct {
	Identifier string `json:"identifier"`
	MD5        string `json:"md5"`
}

// ParseFile reads one export file and returns its entries in file order.
// Structural problems (unreadable file, invalid JSON, missing entries array)
// come back as *ParseError. An entry with no text and no media is still
// valid; filtering is the caller's policy, not the parser's.
func ParseFile(path string) (Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, &ParseError{Path: path, Cause: fmt.Sprintf("reading file: %v", err)}
	}

	var raw rawExport
	if err := json.Unmarshal(data, &raw); err != nil {
		return Export{}, &ParseError{Path: path, Cause: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if raw.Entries == nil {
		return Export{}, &ParseError{Path: path, Cause: "missing 'entries' array"}
	}

	entries := make([]Entry, 0, len(*raw.Entries))
	for _, r := range *raw.Entries {
		entries = append(entries, normalize(r))
	}
	return Export{Path: path, Entries: entries}, nil
}

// ParseAll parses every file independently. A failed file yields an error in
// the second return value; successfully parsed exports are returned in input
// order regardless.
func ParseAll(paths []string) ([]Export, []error) {
	var exports []Export
	var errs []error
	for _, p := range paths {
		exp, err := ParseFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		exports = append(exports, exp)
	}
	return exports, errs
}

func normalize(r rawEntry) Entry {
	e := Entry{
		ID:      r.UUID,
		RawText: r.Text,
		Tags:    r.Tags,
	}

	if ts := strings.TrimSpace(r.CreationDate); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.CreatedAt = &t
		}
	}

	for i, m := range r.Photos {
		e.Photos = append(e.Photos, MediaRef{
			Kind:         KindPhoto,
			Identifier:   strings.ToUpper(m.Identifier),
			MD5:          strings.ToUpper(m.MD5),
			OrderInEntry: i,
		})
	}
	for i, m := range r.Videos {
		e.Videos = append(e.Videos, MediaRef{
			Kind:         KindVideo,
			Identifier:   strings.ToUpper(m.Identifier),
			MD5:          strings.ToUpper(m.MD5),
			OrderInEntry: i,
		})
	}
	// Audio attachments are not importable; keep the identifiers so the run
	// summary can report them as skipped instead of dropping them silently.
	for _, m := range r.Audios {
		id := m.Identifier
		if id == "" {
			id = "unknown"
		}
		e.SkippedAudio = append(e.SkippedAudio, strings.ToUpper(id))
	}

	return e
}
