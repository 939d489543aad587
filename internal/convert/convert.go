// Package convert turns an entry's markdown into the HTML representation the
// Notes backend consumes.
package convert

import (
	"bytes"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	rendererhtml "github.com/yuin/goldmark/renderer/html"
)

// momentRef matches Day One inline media placeholders such as
// ![](dayone-moment://ABC123) and ![](dayone-moment:/video/DEF456). The media
// itself arrives as an attachment; the token is purely textual.
var momentRef = regexp.MustCompile(`!\[[^\]]*\]\(dayone-moment:/[^)]*\)`)

// Converter renders markdown to HTML. Hard wraps are enabled so single
// newlines become <br> tags; the Notes rendering surface treats plain
// newlines as whitespace.
type Converter struct {
	md goldmark.Markdown
}

// New creates a Converter configured for Day One entry text.
func New() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				rendererhtml.WithHardWraps(),
				rendererhtml.WithUnsafe(),
			),
		),
	}
}

// Convert strips inline media placeholders and renders the remaining markdown
// to HTML. Unrecognized markup passes through as literal text. A renderer
// failure degrades to escaped plain text rather than failing the entry.
func (c *Converter) Convert(raw string) string {
	cleaned := momentRef.ReplaceAllString(raw, "")

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(cleaned), &buf); err != nil {
		slog.Warn("markdown conversion failed, using plain text", "error", err)
		return plainTextHTML(cleaned)
	}
	return buf.String()
}

// plainTextHTML is the fallback rendering: escaped text with explicit line
// breaks.
func plainTextHTML(text string) string {
	escaped := html.EscapeString(text)
	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}
