package notes

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/dayone2notes/internal/plan"
)

// AppleScript drives Apple Notes through osascript. Each call gets its own
// timeout; the importer never imposes one.
type AppleScript struct {
	timeout time.Duration
}

// NewAppleScript creates the Apple Notes backend. timeout bounds every
// osascript invocation; zero means the 30s default.
func NewAppleScript(timeout time.Duration) *AppleScript {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AppleScript{timeout: timeout}
}

func (a *AppleScript) run(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return runOSAScript(ctx, script)
}

// IsReady checks that Notes is running, launching it if necessary.
func (a *AppleScript) IsReady(ctx context.Context) (bool, string) {
	out, err := a.run(ctx, checkRunningScript)
	if err != nil {
		return false, "could not check Notes app status: " + err.Error()
	}
	if strings.EqualFold(strings.TrimSpace(out), "true") {
		return true, "Notes app is running"
	}

	slog.Info("Apple Notes is not running, launching")
	out, err = a.run(ctx, launchScript)
	if err != nil {
		return false, "failed to launch Notes app: " + err.Error()
	}
	if !strings.EqualFold(strings.TrimSpace(out), "true") {
		return false, "Notes app failed to launch; open it manually and try again"
	}
	return true, "Notes app launched"
}

// EnsureFolder creates the folder if missing. Empty name targets the default
// folder and needs no setup.
func (a *AppleScript) EnsureFolder(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	_, err := a.run(ctx, ensureFolderScript(name))
	return err
}

// Submit creates the note, then applies tags in a second call so a tag
// failure degrades the outcome instead of losing the note. The tag append is
// addressed to the id returned by the creation script; a title lookup could
// hit a pre-existing note with the same name.
func (a *AppleScript) Submit(ctx context.Context, p plan.Plan) Outcome {
	body, degradedDate := finalBody(p)

	noteID, err := a.run(ctx, createNoteScript(p, body))
	if err != nil {
		return Outcome{Status: StatusFailed, FinalTitle: p.Title, Reason: err.Error()}
	}

	if len(p.Tags) > 0 {
		if noteID == "" {
			return Outcome{
				Status:     StatusCreatedTagFailure,
				FinalTitle: p.Title,
				Reason:     "applying tags: creation script returned no note id",
			}
		}
		if _, err := a.run(ctx, appendTagsScript(p, noteID)); err != nil {
			return Outcome{
				Status:     StatusCreatedTagFailure,
				FinalTitle: p.Title,
				Reason:     "applying tags: " + err.Error(),
			}
		}
	}

	if degradedDate {
		return Outcome{
			Status:     StatusCreatedDegradedDate,
			FinalTitle: p.Title,
			Reason:     "Notes does not allow setting creation dates; date kept in body",
		}
	}
	return Outcome{Status: StatusCreated, FinalTitle: p.Title}
}
