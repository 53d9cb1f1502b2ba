package fixture

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/trackora/pkg/browser"
	"github.com/entrhq/trackora/pkg/logging"
	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/report"
)

// TB is the part of testing.TB a case drives. *testing.T satisfies it.
type TB interface {
	Name() string
	Helper()
	Logf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	FailNow()
	Failed() bool
	Skipped() bool
	Cleanup(func())
}

// Target is the browser session a case runs against.
type Target interface {
	Dialogs
	Live() bool
	Screenshot(path string) error
	DOMExcerpt(maxLength int) (string, error)
	Close() error
}

// Case is one test's run against its own session. It satisfies testify's
// TestingT, so assertions made through it are recorded for the report as
// well as reported to go test.
type Case struct {
	tb      TB
	harness *Harness
	module  string
	logger  *logging.Logger
	started time.Time

	mu       sync.Mutex
	phase    Phase
	target   Target
	auth     *AuthContext
	failures []report.Failure
	kind     report.FailureKind
	entry    *report.Entry

	// logMu guards logs. The case logger appends to logs, and it is called
	// while mu is held.
	logMu sync.Mutex
	logs  []string
}

func newCase(h *Harness, tb TB, module string) *Case {
	c := &Case{
		tb:      tb,
		harness: h,
		module:  module,
		phase:   PhaseNotStarted,
		started: h.now(),
	}
	c.logger = h.logger.With(tb.Name()).Tee(c.appendLog)
	return c
}

func (c *Case) appendLog(line string) {
	c.logMu.Lock()
	c.logs = append(c.logs, line)
	c.logMu.Unlock()
}

func (c *Case) logLines() []string {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	return append([]string(nil), c.logs...)
}

// Name returns the test name.
func (c *Case) Name() string { return c.tb.Name() }

// Module returns the module the test belongs to.
func (c *Case) Module() string { return c.module }

// Logger returns the case logger. Its lines are attached to the report
// entry.
func (c *Case) Logger() *logging.Logger { return c.logger }

// Phase returns the current lifecycle phase.
func (c *Case) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Session returns the case's browser session, nil if setup failed.
func (c *Case) Session() Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Auth returns the login context of an authenticated case.
func (c *Case) Auth() *AuthContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// Dashboard returns the landing page of an authenticated case.
func (c *Case) Dashboard() *pages.Dashboard {
	if a := c.Auth(); a != nil {
		return a.Dashboard
	}
	return nil
}

// PageOptions returns the page driver options for this case.
func (c *Case) PageOptions() []pages.Option {
	opts := append([]pages.Option{}, c.harness.pageOpts...)
	return append(opts, pages.WithLogger(c.logger))
}

// Entry returns the report entry once the case is done.
func (c *Case) Entry() (report.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return report.Entry{}, false
	}
	return *c.entry, true
}

// Helper marks the calling function as a test helper.
func (c *Case) Helper() { c.tb.Helper() }

// Logf logs to both the run log and the test output.
func (c *Case) Logf(format string, args ...interface{}) {
	c.tb.Helper()
	c.logger.Infof(format, args...)
	c.tb.Logf(format, args...)
}

// Errorf records an assertion failure and marks the test failed.
func (c *Case) Errorf(format string, args ...interface{}) {
	c.tb.Helper()
	msg := fmt.Sprintf(format, args...)
	c.record(msg, report.KindAssertion)
	c.logger.Errorf("%s", strings.TrimSpace(msg))
	c.tb.Errorf("%s", msg)
}

// FailNow stops the test.
func (c *Case) FailNow() {
	c.tb.Helper()
	c.tb.FailNow()
}

// Fatalf is Errorf followed by FailNow.
func (c *Case) Fatalf(format string, args ...interface{}) {
	c.tb.Helper()
	c.Errorf(format, args...)
	c.tb.FailNow()
}

// Failed reports whether the test has failed.
func (c *Case) Failed() bool { return c.tb.Failed() }

// Run runs body and turns a panic in it into a failure of this test. The
// panic is recorded with its stack and the test is stopped, so the session
// is still released and the other tests keep running.
func (c *Case) Run(body func()) {
	c.tb.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		msg := fmt.Sprintf("panic: %v", r)
		c.record(msg, report.KindAssertion)
		c.logger.Errorf("%s", msg)
		c.tb.Errorf("%s", msg)
		c.tb.FailNow()
	}()
	body()
}

// Check stops the test when err is non-nil, recording it with its
// classified kind so broken infrastructure is not reported as a failed
// check.
func (c *Case) Check(err error, context string) {
	c.tb.Helper()
	if err == nil {
		return
	}
	msg := err.Error()
	if context != "" {
		msg = context + ": " + msg
	}
	c.record(msg, Classify(err))
	c.logger.Errorf("%s", msg)
	c.tb.Errorf("%s", msg)
	c.tb.FailNow()
}

func (c *Case) record(msg string, kind report.FailureKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, report.Failure{Message: msg, Stack: string(debug.Stack())})
	if c.kind != report.KindInfrastructure {
		c.kind = kind
	}
}

func (c *Case) transition(to Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitionLocked(to)
}

func (c *Case) transitionLocked(to Phase) error {
	if !CanTransition(c.phase, to) {
		err := &TransitionError{From: c.phase, To: to}
		c.logger.Errorf("%v", err)
		return err
	}
	c.logger.Debugf("phase %s -> %s", c.phase, to)
	c.phase = to
	return nil
}

// setupFailed ends setup with err and stops the test.
func (c *Case) setupFailed(err error) {
	c.tb.Helper()
	msg := fmt.Sprintf("setup failed: %v", err)
	c.mu.Lock()
	c.failures = append(c.failures, report.Failure{Message: msg, Stack: string(debug.Stack())})
	c.kind = report.KindInfrastructure
	_ = c.transitionLocked(PhaseSetupFailed)
	c.mu.Unlock()

	c.logger.Errorf("%s", msg)
	c.tb.Errorf("%s", msg)
	c.tb.FailNow()
}

// finish runs after the test body. It settles the outcome, captures
// failure artifacts, releases the session and records the entry.
func (c *Case) finish() {
	c.mu.Lock()
	switch c.phase {
	case PhaseSetup:
		// The setup step itself stopped the test.
		c.failures = append(c.failures, report.Failure{Message: "setup did not complete"})
		c.kind = report.KindInfrastructure
		_ = c.transitionLocked(PhaseSetupFailed)
	case PhaseRunning:
		if c.tb.Failed() || len(c.failures) > 0 {
			_ = c.transitionLocked(PhaseFailed)
		} else {
			_ = c.transitionLocked(PhasePassed)
		}
	}
	phase := c.phase
	target := c.target
	c.mu.Unlock()

	entry := report.Entry{
		Name:    c.Name(),
		Module:  c.module,
		Started: c.started,
	}
	if phase == PhaseFailed {
		c.capture(target, &entry)
	}

	if err := c.transition(PhaseTeardown); err == nil && target != nil {
		if cerr := target.Close(); cerr != nil {
			c.logger.Warnf("closing session: %v", cerr)
		}
	}
	_ = c.transition(PhaseDone)

	c.mu.Lock()
	entry.Outcome = outcomeOf(phase, c.tb.Skipped())
	entry.Duration = c.harness.now().Sub(c.started)
	entry.Failures = append([]report.Failure(nil), c.failures...)
	if entry.Failed() {
		entry.Kind = c.kind
		if entry.Kind == report.KindNone {
			entry.Kind = report.KindAssertion
		}
		if len(entry.Failures) == 0 {
			entry.Failures = []report.Failure{{Message: "test failed; see the go test output"}}
		}
	}
	entry.Logs = c.logLines()
	c.entry = &entry
	c.mu.Unlock()

	c.harness.record(entry)
}

// capture attaches a screenshot and a DOM excerpt when the session can
// still provide them. Capture failures are logged and never fail the test.
func (c *Case) capture(target Target, entry *report.Entry) {
	if target == nil || !target.Live() {
		c.logger.Warnf("no live session, skipping failure screenshot")
		return
	}

	path := c.harness.run.ScreenshotPath(c.Name(), c.harness.now())
	if err := target.Screenshot(path); err != nil {
		capErr := &report.ArtifactCaptureError{Artifact: "screenshot", Path: path, Err: err}
		c.logger.Warnf("%v", capErr)
		entry.ArtifactErrors = append(entry.ArtifactErrors, capErr.Error())
	} else {
		entry.Screenshot = path
		c.logger.Infof("saved failure screenshot to %s", path)
	}

	excerpt, err := target.DOMExcerpt(browser.DefaultExcerptLength)
	if err != nil {
		capErr := &report.ArtifactCaptureError{Artifact: "dom excerpt", Err: err}
		c.logger.Warnf("%v", capErr)
		entry.ArtifactErrors = append(entry.ArtifactErrors, capErr.Error())
		return
	}
	entry.DOMExcerpt = excerpt
}

func outcomeOf(phase Phase, skipped bool) report.Outcome {
	switch {
	case phase == PhaseSetupFailed:
		return report.OutcomeSetupFailed
	case phase == PhaseFailed:
		return report.OutcomeFailed
	case skipped:
		return report.OutcomeSkipped
	default:
		return report.OutcomePassed
	}
}
