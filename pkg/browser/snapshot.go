package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// DefaultExcerptLength caps DOM excerpts attached to failure reports.
const DefaultExcerptLength = 4000

// noise elements never carry anything a failure triage needs.
var noise = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
	"link":     true,
	"meta":     true,
}

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "col": true, "source": true, "wbr": true,
}

// attributes kept in excerpts: whatever locators target.
var keptAttributes = map[string]bool{
	"id":          true,
	"class":       true,
	"name":        true,
	"type":        true,
	"href":        true,
	"role":        true,
	"value":       true,
	"placeholder": true,
	"disabled":    true,
	"aria-label":  true,
}

// cleanHTML reduces a document to its element skeleton and visible text,
// one element per line, truncated at maxLength.
func cleanHTML(raw string, maxLength int) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}

	w := &excerptWriter{max: maxLength}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	w.walk(body, 0)

	out := strings.TrimSpace(w.b.String())
	if w.truncated {
		out += "\n..."
	}
	return out, nil
}

type excerptWriter struct {
	b         strings.Builder
	max       int
	truncated bool
}

func (w *excerptWriter) write(s string) bool {
	if w.b.Len()+len(s) > w.max {
		w.truncated = true
		return false
	}
	w.b.WriteString(s)
	return true
}

func (w *excerptWriter) walk(n *html.Node, depth int) {
	for c := n.FirstChild; c != nil && !w.truncated; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.Join(strings.Fields(c.Data), " "); text != "" {
				w.write(strings.Repeat("  ", depth) + text + "\n")
			}
		case html.ElementNode:
			tag := strings.ToLower(c.Data)
			if noise[tag] {
				continue
			}
			if !w.write(strings.Repeat("  ", depth) + openTag(c, tag) + "\n") {
				return
			}
			if !voidElements[tag] {
				w.walk(c, depth+1)
			}
		}
	}
}

func openTag(n *html.Node, tag string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for _, a := range n.Attr {
		if keptAttributes[strings.ToLower(a.Key)] || strings.HasPrefix(a.Key, "data-") {
			fmt.Fprintf(&b, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
		}
	}
	b.WriteString(">")
	return b.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
