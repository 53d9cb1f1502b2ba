// Package pages holds the page surfaces of the application under test. A
// surface is a thin wrapper over a Driver and a locator Table; there is no
// page hierarchy.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/entrhq/trackora/pkg/logging"
	"github.com/entrhq/trackora/pkg/wait"
)

const (
	// DefaultProbeTimeout bounds the yes/no visibility checks.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultOverlayTimeout bounds waits for the loading spinner to clear.
	DefaultOverlayTimeout = 10 * time.Second
)

// Overlay is the loading spinner the application shows while fetching.
var Overlay = wait.CSS(".ant-spin")

// Session is what a page needs from a browser session. *browser.Session
// satisfies it.
type Session interface {
	wait.Surface
	Wait() *wait.Engine
	URL() string
	Title() (string, error)
	Navigate(target string) error
	Reload() error
	WaitForLoad() error
}

// Table maps locator names to locators for one page.
type Table map[string]wait.Locator

// Get returns the locator called name.
func (t Table) Get(name string) (wait.Locator, bool) {
	loc, ok := t[name]
	return loc, ok
}

// MustGet returns the locator called name and panics when it is missing.
// Tables are static, so a miss is a programming error.
func (t Table) MustGet(name string) wait.Locator {
	loc, ok := t[name]
	if !ok {
		panic(fmt.Sprintf("pages: no locator named %q", name))
	}
	return loc
}

// Names returns the locator names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithProbeTimeout sets the timeout of IsVisible checks.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.probeTimeout = timeout
		}
	}
}

// WithOverlayTimeout sets how long AwaitOverlayGone waits.
func WithOverlayTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.overlayTimeout = timeout
		}
	}
}

// Driver performs synchronized interactions on one session. Every
// interaction resolves its element through the session's wait engine first.
type Driver struct {
	session        Session
	locators       Table
	logger         *logging.Logger
	probeTimeout   time.Duration
	overlayTimeout time.Duration
}

// NewDriver creates a driver over session using the given locators.
func NewDriver(session Session, locators Table, opts ...Option) *Driver {
	d := &Driver{
		session:        session,
		locators:       locators,
		probeTimeout:   DefaultProbeTimeout,
		overlayTimeout: DefaultOverlayTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Session returns the driven session.
func (d *Driver) Session() Session { return d.session }

// Locators returns the driver's locator table.
func (d *Driver) Locators() Table { return d.locators }

// Logger returns the driver's logger, which may be nil.
func (d *Driver) Logger() *logging.Logger { return d.logger }

// L returns the locator called name.
func (d *Driver) L(name string) wait.Locator {
	return d.locators.MustGet(name)
}

func (d *Driver) engine() *wait.Engine {
	return d.session.Wait()
}

// Click waits for loc to be clickable and clicks it, falling back to a
// dispatched click when the normal click is intercepted.
func (d *Driver) Click(loc wait.Locator) error {
	d.logger.Debugf("click %s", loc)
	if _, err := d.engine().Click(loc); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// Fill waits for loc to be visible, clears it and types value.
func (d *Driver) Fill(loc wait.Locator, value string) error {
	el, err := d.engine().Visible(loc, 0)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	if err := el.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

// Text waits for loc to be visible and returns its text.
func (d *Driver) Text(loc wait.Locator) (string, error) {
	el, err := d.engine().Visible(loc, 0)
	if err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("text of %s: %w", loc, err)
	}
	return text, nil
}

// IsVisible reports whether loc becomes visible within the probe timeout.
func (d *Driver) IsVisible(loc wait.Locator) bool {
	return d.IsVisibleWithin(loc, d.probeTimeout)
}

// IsVisibleWithin reports whether loc becomes visible within timeout.
func (d *Driver) IsVisibleWithin(loc wait.Locator, timeout time.Duration) bool {
	_, err := d.engine().Visible(loc, timeout)
	return err == nil
}

// IsPresent reports whether loc matches anything right now.
func (d *Driver) IsPresent(loc wait.Locator) bool {
	return d.engine().Present(loc)
}

// SelectByValue picks the option with value in a native select.
func (d *Driver) SelectByValue(loc wait.Locator, value string) error {
	el, err := d.engine().Visible(loc, 0)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	if err := el.SelectOption(value); err != nil {
		return fmt.Errorf("select %q in %s: %w", value, loc, err)
	}
	return nil
}

// ScrollTo scrolls loc into view.
func (d *Driver) ScrollTo(loc wait.Locator) error {
	el, err := d.engine().Visible(loc, 0)
	if err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll to %s: %w", loc, err)
	}
	return nil
}

// AwaitOverlayGone waits for the loading spinner to clear. A spinner that
// never clears is logged and ignored; the following interaction's own wait
// decides whether the page is usable.
func (d *Driver) AwaitOverlayGone() error {
	err := d.engine().Absent(Overlay, d.overlayTimeout)
	var nf *wait.NotFoundError
	if errors.As(err, &nf) {
		d.logger.Warnf("loading overlay still shown after %s, continuing", d.overlayTimeout)
		return nil
	}
	return err
}

// ChooseOption drives a custom dropdown: it waits for the overlay, opens
// the dropdown and clicks option in the opened menu.
func (d *Driver) ChooseOption(dropdown, option wait.Locator) error {
	if err := d.AwaitOverlayGone(); err != nil {
		return err
	}
	if err := d.ScrollTo(dropdown); err != nil {
		return err
	}
	if err := d.Click(dropdown); err != nil {
		return fmt.Errorf("open dropdown: %w", err)
	}
	if err := d.Click(option); err != nil {
		return fmt.Errorf("choose option: %w", err)
	}
	d.logger.Debugf("chose %s from %s", option, dropdown)
	return nil
}

// WaitForModal waits for a modal dialog to be visible.
func (d *Driver) WaitForModal(modal wait.Locator, timeout time.Duration) error {
	if _, err := d.engine().Visible(modal, timeout); err != nil {
		return fmt.Errorf("modal did not open: %w", err)
	}
	return nil
}

// WaitForModalClosed waits for a modal dialog to go away.
func (d *Driver) WaitForModalClosed(modal wait.Locator, timeout time.Duration) error {
	if err := d.engine().Absent(modal, timeout); err != nil {
		return fmt.Errorf("modal did not close: %w", err)
	}
	return nil
}

// WaitForLoad blocks until the current document is complete.
func (d *Driver) WaitForLoad() error {
	return d.session.WaitForLoad()
}

// URL returns the session's current URL.
func (d *Driver) URL() string {
	return d.session.URL()
}
