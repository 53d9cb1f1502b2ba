package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/trackora/pkg/wait"
)

// obscuredScript hit-tests the element's centre point. Offscreen or
// zero-sized elements count as obscured.
const obscuredScript = `(el) => {
	const r = el.getBoundingClientRect();
	if (r.width === 0 || r.height === 0) return true;
	const x = r.left + r.width / 2;
	const y = r.top + r.height / 2;
	const top = document.elementFromPoint(x, y);
	return !(top && (top === el || el.contains(top)));
}`

// element adapts a Playwright handle to wait.Element.
type element struct {
	handle       playwright.ElementHandle
	clickTimeout time.Duration
}

func (e *element) Visible() (bool, error) {
	return e.handle.IsVisible()
}

func (e *element) Enabled() (bool, error) {
	return e.handle.IsEnabled()
}

func (e *element) Obscured() (bool, error) {
	// Best effort; an element that cannot scroll is judged where it is.
	_ = e.handle.ScrollIntoViewIfNeeded()

	v, err := e.handle.Evaluate(obscuredScript)
	if err != nil {
		return false, err
	}
	obscured, _ := v.(bool)
	return obscured, nil
}

func (e *element) Click() error {
	err := e.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(millis(e.clickTimeout)),
	})
	return classifyInteraction(err)
}

func (e *element) ForceClick() error {
	if _, err := e.handle.Evaluate("(el) => el.click()"); err != nil {
		return fmt.Errorf("dispatched click failed: %w", err)
	}
	return nil
}

func (e *element) Fill(value string) error {
	return classifyInteraction(e.handle.Fill(value))
}

func (e *element) SelectOption(value string) error {
	_, err := e.handle.SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	return classifyInteraction(err)
}

func (e *element) Text() (string, error) {
	return e.handle.InnerText()
}

func (e *element) ScrollIntoView() error {
	return e.handle.ScrollIntoViewIfNeeded()
}

// classifyInteraction maps Playwright's "another element would receive the
// click" failure onto wait.ErrIntercepted.
func classifyInteraction(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "intercepts pointer events") {
		return fmt.Errorf("%w: %v", wait.ErrIntercepted, err)
	}
	return err
}

// selectorFor renders a locator in Playwright selector syntax.
func selectorFor(loc wait.Locator) string {
	switch loc.Strategy {
	case wait.ByCSS:
		return "css=" + loc.Selector
	case wait.ByXPath:
		return "xpath=" + loc.Selector
	case wait.ByID:
		return "id=" + loc.Selector
	case wait.ByName:
		return fmt.Sprintf("css=[name=%q]", loc.Selector)
	case wait.ByText:
		return "text=" + loc.Selector
	case wait.ByTestID:
		return "data-testid=" + loc.Selector
	}
	return loc.Selector
}
