// Package fixture runs UI tests under go test: each test gets a Case that
// owns a fresh browser session, tracks the test through its lifecycle
// phases, captures failure artifacts and records a report entry.
package fixture

import (
	"time"

	"github.com/entrhq/trackora/pkg/browser"
	"github.com/entrhq/trackora/pkg/console"
	"github.com/entrhq/trackora/pkg/logging"
	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/report"
	"github.com/entrhq/trackora/pkg/testdata"
)

// Provisioner opens a new session for one test.
type Provisioner func() (Target, error)

// Launch returns a provisioner opening sessions with opts.
func Launch(l *browser.Launcher, opts browser.Options) Provisioner {
	return func() (Target, error) {
		s, err := l.Open(opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Harness holds what every test in a run shares: the report run, the
// credentials and the way sessions are opened.
type Harness struct {
	run        *report.Run
	provision  Provisioner
	creds      *testdata.Credentials
	console    *console.Console
	alertGrace time.Duration
	pageOpts   []pages.Option
	logger     *logging.Logger
	now        func() time.Time
}

// Option configures a Harness.
type Option func(*Harness)

// WithCredentials sets the credentials used by StartAuthenticated.
func WithCredentials(c *testdata.Credentials) Option {
	return func(h *Harness) { h.creds = c }
}

// WithConsole prints each finished test to c.
func WithConsole(c *console.Console) Option {
	return func(h *Harness) { h.console = c }
}

// WithAlertGrace sets how long to wait for the post-login alert.
func WithAlertGrace(d time.Duration) Option {
	return func(h *Harness) {
		if d >= 0 {
			h.alertGrace = d
		}
	}
}

// WithPageOptions adds options to every page driver built for a case.
func WithPageOptions(opts ...pages.Option) Option {
	return func(h *Harness) { h.pageOpts = append(h.pageOpts, opts...) }
}

// WithLogger sets the harness logger. Case loggers derive from it.
func WithLogger(l *logging.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.now = now }
}

// New creates a harness recording into run.
func New(run *report.Run, provision Provisioner, opts ...Option) *Harness {
	h := &Harness{
		run:        run,
		provision:  provision,
		alertGrace: DefaultAlertGrace,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = run.Logger().With("fixture")
	}
	return h
}

// Run returns the report run.
func (h *Harness) Run() *report.Run { return h.run }

// Credentials returns the run's credentials.
func (h *Harness) Credentials() *testdata.Credentials { return h.creds }

// Start opens a session for tb and moves the case to RUNNING. When the
// session cannot be opened the case ends as SETUP_FAILED and tb is stopped.
func (h *Harness) Start(tb TB, module string) *Case {
	tb.Helper()
	c := h.begin(tb, module)
	if !h.open(c) {
		return c
	}
	_ = c.transition(PhaseRunning)
	return c
}

// StartAuthenticated is Start followed by a login as role. A failed login
// is a setup failure.
func (h *Harness) StartAuthenticated(tb TB, module, role string) *Case {
	tb.Helper()
	c := h.begin(tb, module)
	if !h.open(c) {
		return c
	}

	auth, err := Authenticate(c.target, h.creds, role, h.alertGrace, c.PageOptions()...)
	if err != nil {
		c.setupFailed(err)
		return c
	}
	if auth.Lookup.Match == testdata.MatchDefault {
		c.logger.Warnf("role %q not defined, logged in as %q", role, auth.Lookup.Role)
	}

	c.mu.Lock()
	c.auth = auth
	c.mu.Unlock()
	_ = c.transition(PhaseRunning)
	return c
}

func (h *Harness) begin(tb TB, module string) *Case {
	c := newCase(h, tb, module)
	tb.Cleanup(c.finish)
	_ = c.transition(PhaseSetup)
	c.logger.Infof("starting %s", tb.Name())
	return c
}

func (h *Harness) open(c *Case) bool {
	target, err := h.provision()
	if err != nil {
		c.setupFailed(err)
		return false
	}
	c.mu.Lock()
	c.target = target
	c.mu.Unlock()
	return true
}

func (h *Harness) record(e report.Entry) {
	h.run.Recorder().Add(e)
	if h.console != nil {
		h.console.TestResult(e)
	}
	h.logger.Infof("%s finished: %s", e.Name, e.Outcome)
}
