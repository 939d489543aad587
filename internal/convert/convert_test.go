package convert

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// parseHTML builds a node tree so structure can be asserted without depending
// on exact renderer output bytes.
func parseHTML(t *testing.T, s string) *html.Node {
	t.Helper()
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parsing converter output: %v", err)
	}
	return node
}

// findElement walks the tree for the first element with the given tag and
// returns its concatenated text content.
func findElement(n *html.Node, tag string) (string, bool) {
	if n.Type == html.ElementNode && n.Data == tag {
		return textContent(n), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text, ok := findElement(c, tag); ok {
			return text, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func countElements(n *html.Node, tag string) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == tag {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countElements(c, tag)
	}
	return count
}

func TestConvert_HeadingAndBoldSurvivePlaceholderRemoval(t *testing.T) {
	c := New()
	out := c.Convert("# Morning\n\nA **great** day.\n\n![](dayone-moment://ABC123)")

	if strings.Contains(out, "dayone-moment") {
		t.Errorf("placeholder not stripped: %s", out)
	}

	doc := parseHTML(t, out)
	if text, ok := findElement(doc, "h1"); !ok || text != "Morning" {
		t.Errorf("expected <h1>Morning</h1>, got %q (found=%v)", text, ok)
	}
	if text, ok := findElement(doc, "strong"); !ok || text != "great" {
		t.Errorf("expected <strong>great</strong>, got %q (found=%v)", text, ok)
	}
}

func TestConvert_VideoMomentPlaceholder(t *testing.T) {
	c := New()
	out := c.Convert("Before ![clip](dayone-moment:/video/DEF456) After")

	if strings.Contains(out, "dayone-moment") {
		t.Errorf("video placeholder not stripped: %s", out)
	}
	if !strings.Contains(out, "Before") || !strings.Contains(out, "After") {
		t.Errorf("surrounding text lost: %s", out)
	}
}

func TestConvert_NewlinesBecomeLineBreaks(t *testing.T) {
	c := New()
	out := c.Convert("Line 1\nLine 2")

	doc := parseHTML(t, out)
	if countElements(doc, "br") == 0 {
		t.Errorf("expected explicit <br> for single newline, got %s", out)
	}
}

func TestConvert_Lists(t *testing.T) {
	c := New()

	out := c.Convert("- one\n- two\n- three")
	doc := parseHTML(t, out)
	if countElements(doc, "ul") != 1 || countElements(doc, "li") != 3 {
		t.Errorf("unordered list not preserved: %s", out)
	}

	out = c.Convert("1. first\n2. second")
	doc = parseHTML(t, out)
	if countElements(doc, "ol") != 1 || countElements(doc, "li") != 2 {
		t.Errorf("ordered list not preserved: %s", out)
	}
}

func TestConvert_Links(t *testing.T) {
	c := New()
	out := c.Convert("Check out [this link](https://example.com)")

	if !strings.Contains(out, `href="https://example.com"`) {
		t.Errorf("link not rendered: %s", out)
	}
	doc := parseHTML(t, out)
	if text, ok := findElement(doc, "a"); !ok || text != "this link" {
		t.Errorf("anchor text = %q (found=%v)", text, ok)
	}
}

func TestConvert_OrdinaryURLsSurvive(t *testing.T) {
	c := New()
	out := c.Convert("Cupcake time!\n\nhttps://www.instagram.com/p/VQ9_T/\n\n![](dayone-moment://ABC)")

	if !strings.Contains(out, "instagram.com") {
		t.Errorf("plain URL stripped: %s", out)
	}
	if strings.Contains(out, "dayone-moment") {
		t.Errorf("placeholder survived: %s", out)
	}
}

func TestConvert_UnrecognizedMarkupStaysLiteral(t *testing.T) {
	c := New()
	out := c.Convert("weird ::markup:: stays")

	if !strings.Contains(out, "::markup::") {
		t.Errorf("unrecognized markup mangled: %s", out)
	}
}

func TestConvert_Italic(t *testing.T) {
	c := New()
	out := c.Convert("This is *italic* text")

	doc := parseHTML(t, out)
	if text, ok := findElement(doc, "em"); !ok || text != "italic" {
		t.Errorf("expected <em>italic</em>, got %q (found=%v)", text, ok)
	}
}

func TestPlainTextHTML(t *testing.T) {
	out := plainTextHTML("a < b\nnext & last")
	if !strings.Contains(out, "&lt;") || !strings.Contains(out, "&amp;") {
		t.Errorf("escaping missing: %s", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Errorf("line break missing: %s", out)
	}
}
