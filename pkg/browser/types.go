package browser

import (
	"net/url"
	"strings"
	"time"
)

// Kind is a supported browser engine.
type Kind string

const (
	Chromium Kind = "chrome"
	Firefox  Kind = "firefox"
)

// ParseKind maps a configured browser name onto a Kind. Names are case
// insensitive; "chromium" is accepted as an alias of "chrome".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome", "chromium":
		return Chromium, nil
	case "firefox":
		return Firefox, nil
	}
	return "", &UnsupportedBrowserError{Name: name}
}

// Default values applied by Options.withDefaults.
const (
	DefaultImplicitWait    = 10 * time.Second
	DefaultPageLoadTimeout = 30 * time.Second
	DefaultClickTimeout    = 2 * time.Second
	DefaultViewportWidth   = 1920
	DefaultViewportHeight  = 1080
)

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options configures a new session.
type Options struct {
	// Kind selects the browser engine
	Kind Kind

	// BaseURL is loaded once the session is up. Relative paths passed to
	// Navigate resolve against it. Empty leaves the page blank.
	BaseURL string

	// Private requests an isolated context with no persisted state
	Private bool

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ImplicitWait is the default timeout for element operations
	ImplicitWait time.Duration

	// PageLoadTimeout bounds navigation and the ready-state wait
	PageLoadTimeout time.Duration

	// ClickTimeout bounds a single click attempt before it is reported as
	// intercepted or failed
	ClickTimeout time.Duration

	// PollInterval is the wait engine's poll interval (0 means default)
	PollInterval time.Duration

	// Viewport sets the page size; nil means 1920x1080
	Viewport *Viewport

	// ProfileDir holds the persistent profile for non-private sessions and
	// is shared by every session opened with it. Empty gives each session
	// its own temporary profile, removed when the session closes.
	ProfileDir string
}

func (o Options) withDefaults() Options {
	if o.ImplicitWait <= 0 {
		o.ImplicitWait = DefaultImplicitWait
	}
	if o.PageLoadTimeout <= 0 {
		o.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = DefaultClickTimeout
	}
	if o.Viewport == nil {
		o.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	return o
}

// chromiumArgs returns the command line flags that relax certificate and
// credential handling for base.
func chromiumArgs(base string) []string {
	args := []string{
		"--disable-features=PasswordManager,CredentialsEnableService,PasswordStore",
		"--ignore-certificate-errors",
		"--allow-insecure-localhost",
		"--ignore-ssl-errors",
	}
	if origin := originOf(base); origin != "" {
		args = append(args, "--unsafely-treat-insecure-origin-as-secure="+origin)
	}
	return args
}

// firefoxPrefs disables saved-login and insecure-form prompts.
func firefoxPrefs() map[string]interface{} {
	return map[string]interface{}{
		"signon.rememberSignons":                             false,
		"signon.autofillForms":                               false,
		"security.insecure_field_warning.contextual.enabled": false,
		"security.certerrors.permanentOverride":              true,
	}
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// resolve joins a relative path onto base. Absolute URLs pass through.
func resolve(base, target string) string {
	if target == "" {
		return base
	}
	t, err := url.Parse(target)
	if err != nil || t.IsAbs() {
		return target
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return target
	}
	return b.ResolveReference(t).String()
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
