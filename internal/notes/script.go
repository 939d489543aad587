package notes

import (
	"fmt"
	"strings"

	"github.com/kalambet/dayone2notes/internal/plan"
)

// escapeString escapes a value for use inside an AppleScript string literal:
// backslashes first, then double quotes.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

const checkRunningScript = `tell application "System Events"
	set notesRunning to (name of processes) contains "Notes"
	return notesRunning
end tell`

const launchScript = `tell application "Notes"
	activate
end tell
delay 2
tell application "System Events"
	set notesRunning to (name of processes) contains "Notes"
	return notesRunning
end tell`

func ensureFolderScript(name string) string {
	esc := escapeString(name)
	return fmt.Sprintf(`tell application "Notes"
	set folderList to name of folders
	if folderList does not contain "%s" then
		make new folder with properties {name:"%s"}
	end if
	return true
end tell`, esc, esc)
}

// createNoteScript builds the script that creates one note with its body and
// attachments, returning the new note's id so follow-up calls can address
// this exact note. body must already be the final HTML, date line included
// when the backend fell back.
func createNoteScript(p plan.Plan, body string) string {
	var sb strings.Builder
	sb.WriteString("tell application \"Notes\"\n")

	if p.Folder != "" {
		fmt.Fprintf(&sb, "set targetFolder to folder \"%s\"\n", escapeString(p.Folder))
	} else {
		sb.WriteString("set targetFolder to folder 1\n")
	}

	fmt.Fprintf(&sb, "set noteBody to \"%s\"\n", escapeString(body))
	fmt.Fprintf(&sb, "make new note at targetFolder with properties {name:\"%s\", body:noteBody}\n",
		escapeString(p.Title))
	sb.WriteString("set newNote to result\n")

	// Attachments keep plan order: photos first, then videos. Each is wrapped
	// in its own try block so one bad file does not abort the note.
	for _, path := range p.MediaPaths {
		fmt.Fprintf(&sb, `try
	set mediaFile to POSIX file "%s" as alias
	make new attachment at newNote with data mediaFile
on error errMsg
	log "failed to attach: " & errMsg
end try
`, escapeString(path))
	}

	sb.WriteString("return id of newNote\n")
	sb.WriteString("end tell")
	return sb.String()
}

// appendTagsScript appends hashtags to the body of the note with the given
// id. Addressing by id, not title, keeps the append off any pre-existing note
// that happens to share the title. Notes recognizes hashtags in body text as
// tags, which works across macOS versions where the scripting dictionary has
// no tag support.
func appendTagsScript(p plan.Plan, noteID string) string {
	hashtags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		hashtags = append(hashtags, "#"+tag)
	}
	line := escapeString(strings.Join(hashtags, " "))

	var sb strings.Builder
	sb.WriteString("tell application \"Notes\"\n")
	fmt.Fprintf(&sb, "set theNote to note id \"%s\"\n", escapeString(noteID))
	sb.WriteString("set currentBody to body of theNote\n")
	fmt.Fprintf(&sb, "set body of theNote to currentBody & \"<div>%s</div>\"\n", line)
	sb.WriteString("end tell")
	return sb.String()
}

// finalBody applies the date-preservation fallback. Notes cannot set creation
// dates, so any plan carrying a timestamp gets its fallback line prepended.
func finalBody(p plan.Plan) (string, bool) {
	switch p.DateStrategy {
	case plan.StrategySetCreationDate, plan.StrategyAppendDateToBody:
		if p.DateFallbackLine != "" {
			return "<div>" + p.DateFallbackLine + "</div><div><br></div>" + p.BodyHTML,
				p.DateStrategy == plan.StrategySetCreationDate
		}
	}
	return p.BodyHTML, false
}
