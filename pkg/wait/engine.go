package wait

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/trackora/pkg/logging"
)

const (
	// DefaultTimeout bounds a single element wait.
	DefaultTimeout = 10 * time.Second

	// DefaultInterval is the delay between condition evaluations.
	DefaultInterval = 100 * time.Millisecond

	// DefaultPageLoadTimeout bounds a page-ready wait.
	DefaultPageLoadTimeout = 30 * time.Second

	// ReadyStateComplete is the document.readyState of a fully loaded page.
	ReadyStateComplete = "complete"
)

// Element is one resolved node on a page.
type Element interface {
	Visible() (bool, error)
	Enabled() (bool, error)
	// Obscured reports whether another element would receive a click at
	// the element's centre point.
	Obscured() (bool, error)
	Click() error
	// ForceClick dispatches a click directly on the element, bypassing
	// hit testing.
	ForceClick() error
	Fill(value string) error
	SelectOption(value string) error
	Text() (string, error)
	ScrollIntoView() error
}

// Surface resolves locators and reports document state. A browser session
// is a Surface; tests use in-memory fakes.
type Surface interface {
	Find(loc Locator) ([]Element, error)
	ReadyState() (string, error)
}

// Condition is polled until it reports true. Errors are treated as "not
// yet" and the most recent one is attached to the timeout failure.
type Condition func() (bool, error)

// Policy is one bounded wait.
type Policy struct {
	Condition Condition
	Timeout   time.Duration
	Interval  time.Duration
}

// Action is an interaction performed on a clickable element. Force is the
// lower-level path tried once when Do is intercepted; nil means no retry.
type Action struct {
	Name  string
	Do    func(Element) error
	Force func(Element) error
}

// ClickAction clicks normally and falls back to a direct dispatched click.
var ClickAction = Action{
	Name:  "click",
	Do:    func(el Element) error { return el.Click() },
	Force: func(el Element) error { return el.ForceClick() },
}

// Engine answers "is it ready yet" questions against a Surface. Every wait
// blocks the calling goroutine only and is bounded by its timeout.
type Engine struct {
	surface         Surface
	timeout         time.Duration
	interval        time.Duration
	pageLoadTimeout time.Duration
	logger          *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the default element wait timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithPageLoadTimeout sets the default page-ready timeout.
func WithPageLoadTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pageLoadTimeout = d
		}
	}
}

// WithLogger sets the logger used for wait diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over surface.
func New(surface Surface, opts ...Option) *Engine {
	e := &Engine{
		surface:         surface,
		timeout:         DefaultTimeout,
		interval:        DefaultInterval,
		pageLoadTimeout: DefaultPageLoadTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timeout returns the default element wait timeout.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Interval returns the poll interval.
func (e *Engine) Interval() time.Duration { return e.interval }

// PageLoadTimeout returns the default page-ready timeout.
func (e *Engine) PageLoadTimeout() time.Duration { return e.pageLoadTimeout }

// Until polls p.Condition. It evaluates immediately, then once per interval,
// with the last evaluation at the deadline. A zero Timeout or Interval
// falls back to the engine defaults.
func (e *Engine) Until(p Policy) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	interval := p.Interval
	if interval <= 0 {
		interval = e.interval
	}

	lastErr, ok := poll(p.Condition, timeout, interval)
	if ok {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, lastErr)
	}
	return fmt.Errorf("%w after %s", ErrTimeout, timeout)
}

func poll(cond Condition, timeout, interval time.Duration) (lastErr error, ok bool) {
	deadline := time.Now().Add(timeout)
	for {
		done, err := cond()
		if err != nil {
			lastErr = err
		} else if done {
			return nil, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return lastErr, false
		}
		if remaining < interval {
			time.Sleep(remaining)
		} else {
			time.Sleep(interval)
		}
	}
}

func (e *Engine) resolveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return e.timeout
	}
	return timeout
}

// Visible waits for the first element matching loc that is attached and
// rendered with a non-empty box.
func (e *Engine) Visible(loc Locator, timeout time.Duration) (Element, error) {
	timeout = e.resolveTimeout(timeout)

	var found Element
	lastErr, ok := poll(func() (bool, error) {
		el, err := e.firstMatching(loc, isVisible)
		found = el
		return el != nil, err
	}, timeout, e.interval)
	if !ok {
		e.logger.Debugf("%s not visible after %s", loc, timeout)
		return nil, &NotFoundError{Locator: loc, Condition: "visible", Timeout: timeout, Err: lastErr}
	}
	return found, nil
}

// Clickable waits for an element that is visible, enabled and not covered
// by another element at its centre point.
func (e *Engine) Clickable(loc Locator, timeout time.Duration) (Element, error) {
	timeout = e.resolveTimeout(timeout)

	var found Element
	lastErr, ok := poll(func() (bool, error) {
		el, err := e.firstMatching(loc, isClickable)
		found = el
		return el != nil, err
	}, timeout, e.interval)
	if !ok {
		e.logger.Debugf("%s not clickable after %s", loc, timeout)
		return nil, &NotFoundError{Locator: loc, Condition: "clickable", Timeout: timeout, Err: lastErr}
	}
	return found, nil
}

// Absent waits until no element matching loc is visible. It returns at
// once when nothing matches.
func (e *Engine) Absent(loc Locator, timeout time.Duration) error {
	timeout = e.resolveTimeout(timeout)

	lastErr, ok := poll(func() (bool, error) {
		els, err := e.surface.Find(loc)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			// A node that errors here has detached, which counts as gone.
			if visible, err := el.Visible(); err == nil && visible {
				return false, nil
			}
		}
		return true, nil
	}, timeout, e.interval)
	if !ok {
		e.logger.Debugf("%s still visible after %s", loc, timeout)
		return &NotFoundError{Locator: loc, Condition: "absent", Timeout: timeout, Err: lastErr}
	}
	return nil
}

// PageReady waits for document.readyState to become "complete".
func (e *Engine) PageReady(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = e.pageLoadTimeout
	}

	var state string
	lastErr, ok := poll(func() (bool, error) {
		s, err := e.surface.ReadyState()
		if err != nil {
			return false, err
		}
		state = s
		return s == ReadyStateComplete, nil
	}, timeout, e.interval)
	if !ok {
		return &NavigationTimeoutError{LastState: state, Timeout: timeout, Err: lastErr}
	}
	return nil
}

// Interact resolves loc as clickable and runs action on it. If the action
// is intercepted it is retried once through action.Force.
func (e *Engine) Interact(loc Locator, action Action) (Element, error) {
	el, err := e.Clickable(loc, e.timeout)
	if err != nil {
		return nil, err
	}

	err = action.Do(el)
	if err == nil {
		return el, nil
	}
	if !errors.Is(err, ErrIntercepted) {
		return nil, fmt.Errorf("%s on %s failed: %w", action.Name, loc, err)
	}
	if action.Force == nil {
		return nil, &InteractionInterceptedError{Locator: loc, Action: action.Name, Cause: err, Err: errors.New("no forced path")}
	}

	e.logger.Warnf("%s on %s intercepted, retrying with forced path: %v", action.Name, loc, err)
	if ferr := action.Force(el); ferr != nil {
		return nil, &InteractionInterceptedError{Locator: loc, Action: action.Name, Cause: err, Err: ferr}
	}
	return el, nil
}

// Click is Interact with ClickAction.
func (e *Engine) Click(loc Locator) (Element, error) {
	return e.Interact(loc, ClickAction)
}

// Present reports whether loc matches anything right now, without waiting.
func (e *Engine) Present(loc Locator) bool {
	els, err := e.surface.Find(loc)
	return err == nil && len(els) > 0
}

func (e *Engine) firstMatching(loc Locator, pred func(Element) (bool, error)) (Element, error) {
	els, err := e.surface.Find(loc)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, el := range els {
		ok, err := pred(el)
		if err != nil {
			// Usually a node detached between query and check.
			lastErr = err
			continue
		}
		if ok {
			return el, nil
		}
	}
	return nil, lastErr
}

func isVisible(el Element) (bool, error) {
	return el.Visible()
}

func isClickable(el Element) (bool, error) {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false, err
	}
	enabled, err := el.Enabled()
	if err != nil || !enabled {
		return false, err
	}
	obscured, err := el.Obscured()
	if err != nil {
		return false, err
	}
	return !obscured, nil
}
