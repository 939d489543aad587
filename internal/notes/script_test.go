package notes

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/dayone2notes/internal/plan"
)

func TestEscapeString(t *testing.T) {
	cases := []struct{ in, want string }{
		{`path\to\file`, `path\\to\\file`},
		{`say "hello"`, `say \"hello\"`},
		{`path\to\"file"`, `path\\to\\\"file\"`},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := escapeString(c.in); got != c.want {
			t.Errorf("escapeString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCreateNoteScript(t *testing.T) {
	p := plan.Plan{
		Title:      `He said "hi"`,
		Folder:     "Import",
		MediaPaths: []string{"/export/photos/a.jpeg", "/export/videos/b.mov"},
	}
	script := createNoteScript(p, "<h1>Body</h1>")

	if !strings.Contains(script, `folder "Import"`) {
		t.Errorf("folder missing:\n%s", script)
	}
	if !strings.Contains(script, `name:"He said \"hi\""`) {
		t.Errorf("title not escaped:\n%s", script)
	}
	if !strings.Contains(script, "<h1>Body</h1>") {
		t.Errorf("body missing:\n%s", script)
	}

	// Attachment order: photo before video.
	pi := strings.Index(script, "a.jpeg")
	vi := strings.Index(script, "b.mov")
	if pi < 0 || vi < 0 || pi > vi {
		t.Errorf("attachment order wrong (photo=%d, video=%d):\n%s", pi, vi, script)
	}

	if !strings.Contains(script, "return id of newNote") {
		t.Errorf("note id not returned:\n%s", script)
	}
}

func TestCreateNoteScript_DefaultFolder(t *testing.T) {
	script := createNoteScript(plan.Plan{Title: "T"}, "body")
	if !strings.Contains(script, "folder 1") {
		t.Errorf("default folder not used:\n%s", script)
	}
}

func TestAppendTagsScript(t *testing.T) {
	p := plan.Plan{Title: "T", Folder: "Import", Tags: []string{"work", "journal"}}
	script := appendTagsScript(p, "x-coredata://store/ICNote/p42")

	if !strings.Contains(script, "#work #journal") {
		t.Errorf("hashtags missing:\n%s", script)
	}
	if !strings.Contains(script, `note id "x-coredata://store/ICNote/p42"`) {
		t.Errorf("note id lookup missing:\n%s", script)
	}
}

func TestAppendTagsScript_AddressesNoteByID(t *testing.T) {
	// A folder may already hold an unrelated note with the same title
	// (re-imports, repeated "Untitled Note"). The append must target the note
	// created in this run, never resolve by title.
	p := plan.Plan{Title: "Untitled Note", Folder: "Import", Tags: []string{"work"}}
	script := appendTagsScript(p, "NOTE-123")

	if !strings.Contains(script, `note id "NOTE-123"`) {
		t.Errorf("note not addressed by id:\n%s", script)
	}
	if strings.Contains(script, `note "Untitled Note"`) {
		t.Errorf("title-based lookup would hit a pre-existing note:\n%s", script)
	}
}

func TestFinalBody_DateFallback(t *testing.T) {
	ts := time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC)
	p := plan.Plan{
		BodyHTML:         "<p>hello</p>",
		DateStrategy:     plan.StrategySetCreationDate,
		CreatedAt:        &ts,
		DateFallbackLine: plan.FormatDateLine(ts),
	}

	body, degraded := finalBody(p)
	if !degraded {
		t.Error("set_creation_date should report degradation on this backend")
	}
	if !strings.HasPrefix(body, "<div>📅 May 15, 2023 at 10:30 AM</div>") {
		t.Errorf("date line not prepended: %s", body)
	}
	if !strings.Contains(body, "<p>hello</p>") {
		t.Errorf("original body lost: %s", body)
	}
}

func TestFinalBody_NoDate(t *testing.T) {
	p := plan.Plan{BodyHTML: "<p>x</p>", DateStrategy: plan.StrategyNone}
	body, degraded := finalBody(p)
	if degraded || body != "<p>x</p>" {
		t.Errorf("dateless plan altered: %q degraded=%v", body, degraded)
	}
}

func TestDryRun_RecordsWithoutSubmitting(t *testing.T) {
	d := NewDryRun()

	ready, _ := d.IsReady(context.Background())
	if !ready {
		t.Fatal("dry-run backend must always be ready")
	}

	out := d.Submit(context.Background(), plan.Plan{Title: "A"})
	if out.Status != StatusCreated || out.FinalTitle != "A" {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if len(d.Plans) != 1 {
		t.Errorf("plan not recorded: %d", len(d.Plans))
	}
}
