package wait

import (
	"fmt"
	"strings"
)

// Strategy identifies how a selector string is interpreted.
type Strategy string

const (
	ByCSS    Strategy = "css"
	ByXPath  Strategy = "xpath"
	ByID     Strategy = "id"
	ByName   Strategy = "name"
	ByText   Strategy = "text"
	ByTestID Strategy = "testid"
)

// Locator is a strategy-tagged selector. Locators are plain values with no
// binding to a page; the surface they are resolved against decides how each
// strategy maps to its query engine.
type Locator struct {
	Strategy Strategy
	Selector string
}

// CSS returns a CSS locator.
func CSS(selector string) Locator { return Locator{Strategy: ByCSS, Selector: selector} }

// XPath returns an XPath locator.
func XPath(selector string) Locator { return Locator{Strategy: ByXPath, Selector: selector} }

// ID returns a locator matching the element id.
func ID(id string) Locator { return Locator{Strategy: ByID, Selector: id} }

// Name returns a locator matching the name attribute.
func Name(name string) Locator { return Locator{Strategy: ByName, Selector: name} }

// Text returns a locator matching visible text.
func Text(text string) Locator { return Locator{Strategy: ByText, Selector: text} }

// TestID returns a locator matching the data-testid attribute.
func TestID(id string) Locator { return Locator{Strategy: ByTestID, Selector: id} }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Selector)
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Selector == ""
}

// Template produces locators from runtime arguments, for selectors that
// embed data such as an option label or a row number.
type Template struct {
	Strategy Strategy
	Format   string
}

// XPathTemplate returns a template formatting args into an XPath selector.
func XPathTemplate(format string) Template {
	return Template{Strategy: ByXPath, Format: format}
}

// CSSTemplate returns a template formatting args into a CSS selector.
func CSSTemplate(format string) Template {
	return Template{Strategy: ByCSS, Format: format}
}

// With renders the template.
func (t Template) With(args ...interface{}) Locator {
	return Locator{Strategy: t.Strategy, Selector: fmt.Sprintf(t.Format, args...)}
}

// XPathLiteral quotes s as an XPath string literal. XPath 1.0 has no escape
// sequences, so a value holding both quote characters is built with
// concat().
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts)-1)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
