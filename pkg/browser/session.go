package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/trackora/pkg/logging"
	"github.com/entrhq/trackora/pkg/wait"
)

const dialogQueueSize = 8

// Session is one live browser bound to one test.
type Session struct {
	// ID is unique per session
	ID string

	// Kind is the browser engine backing the session
	Kind Kind

	// BaseURL is the application root relative navigation resolves against
	BaseURL string

	// Private reports whether the session runs in an isolated context
	Private bool

	// CreatedAt is when the session finished launching
	CreatedAt time.Time

	// ProfileDir is the user data directory of a persistent session, empty
	// for private ones
	ProfileDir string

	browser      playwright.Browser // nil for persistent contexts
	context      playwright.BrowserContext
	page         playwright.Page
	engine       *wait.Engine
	clickTimeout time.Duration
	dialogs      chan string
	launcher     *Launcher
	logger       *logging.Logger
	ownsProfile  bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newSession(id string, opts Options, browser playwright.Browser, context playwright.BrowserContext, page playwright.Page, launcher *Launcher) *Session {
	s := &Session{
		ID:           id,
		Kind:         opts.Kind,
		BaseURL:      opts.BaseURL,
		Private:      opts.Private,
		CreatedAt:    time.Now(),
		browser:      browser,
		context:      context,
		page:         page,
		clickTimeout: opts.ClickTimeout,
		dialogs:      make(chan string, dialogQueueSize),
		launcher:     launcher,
		logger:       launcher.logger.With("session"),
	}
	s.engine = wait.New(s,
		wait.WithTimeout(opts.ImplicitWait),
		wait.WithPageLoadTimeout(opts.PageLoadTimeout),
		wait.WithInterval(opts.PollInterval),
		wait.WithLogger(launcher.logger.With("wait")),
	)
	page.OnDialog(s.handleDialog)
	return s
}

// Wait returns the session's synchronization engine.
func (s *Session) Wait() *wait.Engine {
	return s.engine
}

// Page exposes the underlying Playwright page for operations the session
// does not wrap.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Find implements wait.Surface.
func (s *Session) Find(loc wait.Locator) ([]wait.Element, error) {
	handles, err := s.page.QuerySelectorAll(selectorFor(loc))
	if err != nil {
		return nil, err
	}
	els := make([]wait.Element, 0, len(handles))
	for _, h := range handles {
		els = append(els, &element{handle: h, clickTimeout: s.clickTimeout})
	}
	return els, nil
}

// ReadyState implements wait.Surface.
func (s *Session) ReadyState() (string, error) {
	v, err := s.page.Evaluate("() => document.readyState")
	if err != nil {
		return "", err
	}
	state, _ := v.(string)
	return state, nil
}

// Navigate loads target, resolved against BaseURL when relative, and blocks
// until the document is complete.
func (s *Session) Navigate(target string) error {
	u := resolve(s.BaseURL, target)
	if _, err := s.page.Goto(u, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &wait.NavigationTimeoutError{URL: u, Timeout: s.engine.PageLoadTimeout(), Err: err}
		}
		return &ProvisionError{Stage: "navigate", Kind: s.Kind, Err: fmt.Errorf("navigate to %s: %w", u, err)}
	}
	return s.WaitForLoad()
}

// Reload reloads the current page and waits for it to complete.
func (s *Session) Reload() error {
	if _, err := s.page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return s.WaitForLoad()
}

// WaitForLoad blocks until document.readyState is "complete".
func (s *Session) WaitForLoad() error {
	err := s.engine.PageReady(0)
	var nav *wait.NavigationTimeoutError
	if errors.As(err, &nav) && nav.URL == "" {
		nav.URL = s.page.URL()
	}
	return err
}

// URL returns the current page URL.
func (s *Session) URL() string {
	return s.page.URL()
}

// Title returns the current page title.
func (s *Session) Title() (string, error) {
	return s.page.Title()
}

// Evaluate runs a JavaScript expression in the page.
func (s *Session) Evaluate(expression string, args ...interface{}) (interface{}, error) {
	return s.page.Evaluate(expression, args...)
}

// Screenshot writes a full-page PNG to path.
func (s *Session) Screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if _, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}
	return nil
}

// DOMExcerpt returns the current document stripped of scripts and styles,
// capped at maxLength characters.
func (s *Session) DOMExcerpt(maxLength int) (string, error) {
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return cleanHTML(content, maxLength)
}

// AwaitDialog waits up to grace for a JavaScript dialog and returns its
// message. Dialogs are accepted when they open, so the page is never left
// blocked.
func (s *Session) AwaitDialog(grace time.Duration) (string, bool) {
	select {
	case msg := <-s.dialogs:
		return msg, true
	default:
	}
	if grace <= 0 {
		return "", false
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case msg := <-s.dialogs:
		return msg, true
	case <-timer.C:
		return "", false
	}
}

func (s *Session) handleDialog(d playwright.Dialog) {
	msg := d.Message()
	if err := d.Accept(); err != nil {
		s.logger.Warnf("failed to accept %s dialog %q: %v", d.Type(), msg, err)
	}
	select {
	case s.dialogs <- msg:
	default:
		s.logger.Debugf("dialog queue full, dropped %q", msg)
	}
}

// Live reports whether the session can still take a screenshot.
func (s *Session) Live() bool {
	return !s.closed.Load() && !s.page.IsClosed()
}

// Close releases page, context and browser. Errors from individual steps do
// not stop the remaining steps; the first one is returned. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		var errs []error
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.ownsProfile {
			if err := os.RemoveAll(s.ProfileDir); err != nil {
				errs = append(errs, fmt.Errorf("remove profile: %w", err))
			}
		}
		if len(errs) > 0 {
			s.closeErr = errs[0]
			s.logger.Warnf("session %s closed with errors: %v", s.ID, errors.Join(errs...))
		}

		if s.launcher != nil {
			s.launcher.forget(s.ID)
		}
	})
	return s.closeErr
}

// Connected reports whether the underlying browser process is still
// attached. Persistent contexts report their closed state instead.
func (s *Session) Connected() bool {
	if s.browser != nil {
		return s.browser.IsConnected()
	}
	return !s.closed.Load()
}
