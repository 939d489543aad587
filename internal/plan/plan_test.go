package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/kalambet/dayone2notes/internal/journal"
	"github.com/kalambet/dayone2notes/internal/media"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"My Title\n\nSome content here.", "My Title"},
		{"# Morning\n\nbody", "Morning"},
		{"**Bold Start**\nrest", "Bold Start"},
		{"", "Untitled Note"},
		{"   \n\n   ", "Untitled Note"},
		{"\n\nSecond line first real", "Second line first real"},
	}
	for _, c := range cases {
		if got := DeriveTitle(c.text); got != c.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestDeriveTitle_Truncation(t *testing.T) {
	long := strings.Repeat("A", 100)
	got := DeriveTitle(long + "\nContent")
	if len([]rune(got)) != 50 {
		t.Errorf("truncated title length = %d, want 50", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}
}

func TestClaim_MonotonicSuffixes(t *testing.T) {
	r := NewTitleRegistry()

	got := []string{
		r.Claim("Import", "Morning"),
		r.Claim("Import", "Morning"),
		r.Claim("Import", "Morning"),
	}
	want := []string{"Morning", "Morning 2", "Morning 3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("claim %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClaim_FoldersIndependent(t *testing.T) {
	r := NewTitleRegistry()

	if got := r.Claim("A", "Note"); got != "Note" {
		t.Errorf("first claim in A = %q", got)
	}
	// Interleave a claim in another folder; A's sequence must not move.
	if got := r.Claim("B", "Note"); got != "Note" {
		t.Errorf("first claim in B = %q", got)
	}
	if got := r.Claim("A", "Note"); got != "Note 2" {
		t.Errorf("second claim in A = %q", got)
	}
	if got := r.Claim("B", "Note"); got != "Note 2" {
		t.Errorf("second claim in B = %q", got)
	}
}

func TestBuild_FiltersUnresolvedMedia(t *testing.T) {
	p := NewPlanner("Import", NewTitleRegistry())
	e := journal.Entry{ID: "E1", RawText: "Morning", Tags: []string{"work"}}
	resolved := []media.Resolved{
		{Ref: journal.MediaRef{Kind: journal.KindPhoto, Identifier: "P"}, Path: "/m/photo.jpeg"},
		{Ref: journal.MediaRef{Kind: journal.KindVideo, Identifier: "V"}, Unresolved: true},
	}

	pl, err := p.Build(e, "<p>Morning</p>", resolved)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(pl.MediaPaths) != 1 || pl.MediaPaths[0] != "/m/photo.jpeg" {
		t.Errorf("unresolved media not filtered: %v", pl.MediaPaths)
	}
	if len(pl.Tags) != 1 || pl.Tags[0] != "work" {
		t.Errorf("tags changed: %v", pl.Tags)
	}
}

func TestBuild_DateStrategy(t *testing.T) {
	p := NewPlanner("", NewTitleRegistry())

	ts := time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC)
	pl, err := p.Build(journal.Entry{ID: "A", RawText: "x", CreatedAt: &ts}, "<p>x</p>", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pl.DateStrategy != StrategySetCreationDate {
		t.Errorf("strategy = %q, want set_creation_date", pl.DateStrategy)
	}
	if pl.DateFallbackLine != "📅 May 15, 2023 at 10:30 AM" {
		t.Errorf("fallback line = %q", pl.DateFallbackLine)
	}

	pl2, err := p.Build(journal.Entry{ID: "B", RawText: "y"}, "<p>y</p>", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if pl2.DateStrategy != StrategyNone || pl2.DateFallbackLine != "" {
		t.Errorf("dateless entry got strategy %q / %q", pl2.DateStrategy, pl2.DateFallbackLine)
	}
}

func TestBuild_TitleUsesRegistry(t *testing.T) {
	p := NewPlanner("Import", NewTitleRegistry())

	first, err := p.Build(journal.Entry{ID: "1", RawText: "Morning"}, "", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := p.Build(journal.Entry{ID: "2", RawText: "Morning"}, "", nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if first.Title != "Morning" || second.Title != "Morning 2" {
		t.Errorf("titles = %q, %q", first.Title, second.Title)
	}
}

func TestFormatDateLine_NoLeadingZeros(t *testing.T) {
	ts := time.Date(2024, 1, 5, 9, 5, 0, 0, time.UTC)
	got := FormatDateLine(ts)
	if got != "📅 January 5, 2024 at 9:05 AM" {
		t.Errorf("FormatDateLine = %q", got)
	}
}
