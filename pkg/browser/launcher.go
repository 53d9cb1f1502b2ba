package browser

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/trackora/pkg/logging"
)

// Launcher owns the Playwright driver and tracks every session it opened so
// that Shutdown can release anything a test forgot to close.
type Launcher struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	initialized bool
	logger      *logging.Logger
}

// NewLauncher creates a launcher. Initialize must be called before Open.
func NewLauncher() *Launcher {
	return &Launcher{
		sessions: make(map[string]*Session),
		logger:   logging.MustLogger("browser"),
	}
}

// Initialize starts the Playwright driver. With install set, the driver and
// browsers are downloaded first if missing. Calling it again is a no-op.
func (l *Launcher) Initialize(install bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized {
		return nil
	}

	// Driver output would interleave with go test output.
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium", "firefox"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if install {
		if err := playwright.Install(opts); err != nil {
			return &ProvisionError{Stage: "initialize", Err: fmt.Errorf("failed to install playwright: %w", err)}
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return &ProvisionError{Stage: "initialize", Err: fmt.Errorf("failed to start playwright: %w", err)}
	}

	l.playwright = pw
	l.initialized = true
	l.logger.Infof("playwright driver started")
	return nil
}

// Open launches a browser, prepares a page and loads opts.BaseURL. On any
// failure everything launched so far is released before returning.
func (l *Launcher) Open(opts Options) (*Session, error) {
	kind, err := ParseKind(string(opts.Kind))
	if err != nil {
		return nil, err
	}
	opts.Kind = kind
	opts = opts.withDefaults()

	l.mu.RLock()
	pw, initialized := l.playwright, l.initialized
	l.mu.RUnlock()
	if !initialized {
		return nil, &ProvisionError{Stage: "initialize", Kind: kind, Err: errNotInitialized}
	}

	browserType := pw.Chromium
	var args []string
	var prefs map[string]interface{}
	switch kind {
	case Chromium:
		args = chromiumArgs(opts.BaseURL)
	case Firefox:
		browserType = pw.Firefox
		prefs = firefoxPrefs()
	}
	viewport := &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height}

	var browser playwright.Browser
	var context playwright.BrowserContext
	var dir string
	var ownsDir bool
	if opts.Private {
		l.logger.Infof("launching %s in private mode", kind)
		browser, err = browserType.Launch(playwright.BrowserTypeLaunchOptions{
			Headless:         playwright.Bool(opts.Headless),
			Args:             args,
			FirefoxUserPrefs: prefs,
		})
		if err != nil {
			return nil, &ProvisionError{Stage: "launch", Kind: kind, Err: err}
		}

		context, err = browser.NewContext(playwright.BrowserNewContextOptions{
			IgnoreHttpsErrors: playwright.Bool(true),
			Viewport:          viewport,
		})
		if err != nil {
			_ = browser.Close()
			return nil, &ProvisionError{Stage: "context", Kind: kind, Err: err}
		}
	} else {
		dir, ownsDir, err = profileDir(opts)
		if err != nil {
			return nil, &ProvisionError{Stage: "launch", Kind: kind, Err: err}
		}
		l.logger.Infof("launching %s with profile %s", kind, dir)

		context, err = browserType.LaunchPersistentContext(dir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:          playwright.Bool(opts.Headless),
			Args:              args,
			FirefoxUserPrefs:  prefs,
			IgnoreHttpsErrors: playwright.Bool(true),
			Viewport:          viewport,
		})
		if err != nil {
			removeProfile(dir, ownsDir)
			return nil, &ProvisionError{Stage: "launch", Kind: kind, Err: err}
		}
	}

	page, err := firstPage(context)
	if err != nil {
		_ = context.Close()
		if browser != nil {
			_ = browser.Close()
		}
		removeProfile(dir, ownsDir)
		return nil, &ProvisionError{Stage: "page", Kind: kind, Err: err}
	}

	page.SetDefaultTimeout(millis(opts.ImplicitWait))
	page.SetDefaultNavigationTimeout(millis(opts.PageLoadTimeout))

	session := newSession(uuid.New().String(), opts, browser, context, page, l)
	session.ProfileDir = dir
	session.ownsProfile = ownsDir

	l.mu.Lock()
	l.sessions[session.ID] = session
	l.mu.Unlock()

	if opts.BaseURL != "" {
		if err := session.Navigate(opts.BaseURL); err != nil {
			_ = session.Close()
			return nil, err
		}
	}

	l.logger.Infof("session %s ready (%s, private=%t)", session.ID, kind, opts.Private)
	return session, nil
}

// profileDir returns the user data directory of a persistent session. A
// configured directory is used as is. Otherwise every session gets a fresh
// temporary directory that it removes on Close.
func profileDir(opts Options) (string, bool, error) {
	if opts.ProfileDir != "" {
		if err := os.MkdirAll(opts.ProfileDir, 0750); err != nil {
			return "", false, err
		}
		return opts.ProfileDir, false, nil
	}
	dir, err := os.MkdirTemp("", "trackora-profile-"+string(opts.Kind)+"-")
	if err != nil {
		return "", false, err
	}
	return dir, true, nil
}

func removeProfile(dir string, owned bool) {
	if owned && dir != "" {
		_ = os.RemoveAll(dir)
	}
}

func firstPage(context playwright.BrowserContext) (playwright.Page, error) {
	// Persistent contexts start with a blank tab.
	if pages := context.Pages(); len(pages) > 0 {
		return pages[0], nil
	}
	return context.NewPage()
}

// Close closes a session. Equivalent to session.Close.
func (l *Launcher) Close(session *Session) error {
	return session.Close()
}

func (l *Launcher) forget(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, id)
}

// Active returns the number of sessions that have been opened and not yet
// closed.
func (l *Launcher) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}

// Shutdown closes any remaining sessions and stops the driver.
func (l *Launcher) Shutdown() error {
	l.mu.Lock()
	remaining := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		remaining = append(remaining, s)
	}
	l.mu.Unlock()

	for _, s := range remaining {
		l.logger.Warnf("closing leaked session %s (opened %s ago)", s.ID, time.Since(s.CreatedAt).Round(time.Millisecond))
		_ = s.Close()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return nil
	}
	l.initialized = false
	if err := l.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
