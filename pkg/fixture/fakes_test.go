package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/trackora/pkg/logging"
	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/report"
	"github.com/entrhq/trackora/pkg/wait"
)

// fakeTB records what a test would report to go test. FailNow does not
// stop the goroutine.
type fakeTB struct {
	mu       sync.Mutex
	name     string
	failed   bool
	skipped  bool
	stopped  bool
	errors   []string
	logs     []string
	cleanups []func()
}

func newFakeTB(name string) *fakeTB { return &fakeTB{name: name} }

func (t *fakeTB) Name() string { return t.name }
func (t *fakeTB) Helper()      {}

func (t *fakeTB) Logf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

func (t *fakeTB) Errorf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = true
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
}

func (t *fakeTB) FailNow() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failed = true
	t.stopped = true
}

func (t *fakeTB) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

func (t *fakeTB) Skipped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skipped
}

func (t *fakeTB) Cleanup(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanups = append(t.cleanups, fn)
}

// end runs the cleanups the way go test does at the end of a test.
func (t *fakeTB) end() {
	t.mu.Lock()
	fns := t.cleanups
	t.cleanups = nil
	t.mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// fakeTarget is an in-memory session with a scripted login form.
type fakeTarget struct {
	mu            sync.Mutex
	elements      map[wait.Locator][]*fakeElement
	url           string
	live          bool
	screenshotErr error
	screenshots   []string
	closed        int
	dialogs       []string
	engine        *wait.Engine
}

func newFakeTarget() *fakeTarget {
	t := &fakeTarget{elements: make(map[wait.Locator][]*fakeElement), url: "http://app.test/login", live: true}
	t.engine = wait.New(t, wait.WithTimeout(100*time.Millisecond), wait.WithInterval(5*time.Millisecond), wait.WithPageLoadTimeout(100*time.Millisecond))
	return t
}

// withLoginForm installs a login form accepting password. A successful
// login lands on the dashboard and raises alert, when non-empty.
func (t *fakeTarget) withLoginForm(password, alert string) *fakeTarget {
	pass := &fakeElement{}
	t.add(pages.LoginLocators[pages.LoginUsername], &fakeElement{})
	t.add(pages.LoginLocators[pages.LoginPassword], pass)
	t.add(pages.LoginLocators[pages.LoginButton], &fakeElement{onClick: func() {
		if pass.get() != password {
			t.add(pages.LoginLocators[pages.LoginErrorMessage], &fakeElement{text: pages.InvalidCredentialsMessage})
			return
		}
		t.mu.Lock()
		t.url = "http://app.test/dashboard"
		if alert != "" {
			t.dialogs = append(t.dialogs, alert)
		}
		t.mu.Unlock()
		t.add(pages.DashboardLocators[pages.DashboardTab], &fakeElement{text: "Dashboard"})
	}})
	return t
}

func (t *fakeTarget) add(loc wait.Locator, el *fakeElement) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elements[loc] = append(t.elements[loc], el)
}

func (t *fakeTarget) Find(loc wait.Locator) ([]wait.Element, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var els []wait.Element
	for _, el := range t.elements[loc] {
		els = append(els, el)
	}
	return els, nil
}

func (t *fakeTarget) ReadyState() (string, error) { return wait.ReadyStateComplete, nil }
func (t *fakeTarget) Wait() *wait.Engine          { return t.engine }
func (t *fakeTarget) Title() (string, error)      { return "Trackora", nil }
func (t *fakeTarget) Navigate(string) error       { return nil }
func (t *fakeTarget) Reload() error               { return nil }
func (t *fakeTarget) WaitForLoad() error          { return t.engine.PageReady(0) }

func (t *fakeTarget) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

func (t *fakeTarget) AwaitDialog(time.Duration) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.dialogs) == 0 {
		return "", false
	}
	msg := t.dialogs[0]
	t.dialogs = t.dialogs[1:]
	return msg, true
}

func (t *fakeTarget) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live && t.closed == 0
}

func (t *fakeTarget) Screenshot(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screenshots = append(t.screenshots, path)
	if t.screenshotErr != nil {
		return t.screenshotErr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("\x89PNG"), 0600)
}

func (t *fakeTarget) DOMExcerpt(int) (string, error) {
	return `<body><p class="revenue-head">Revenue Panel</p></body>`, nil
}

func (t *fakeTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return nil
}

func (t *fakeTarget) stats() (screenshots []string, closed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.screenshots...), t.closed
}

type fakeElement struct {
	mu      sync.Mutex
	text    string
	value   string
	onClick func()
}

func (e *fakeElement) Visible() (bool, error)  { return true, nil }
func (e *fakeElement) Enabled() (bool, error)  { return true, nil }
func (e *fakeElement) Obscured() (bool, error) { return false, nil }
func (e *fakeElement) ForceClick() error       { return e.Click() }
func (e *fakeElement) SelectOption(string) error {
	return errors.New("not a select")
}
func (e *fakeElement) ScrollIntoView() error { return nil }

func (e *fakeElement) Click() error {
	e.mu.Lock()
	fn := e.onClick
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (e *fakeElement) Fill(v string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = v
	return nil
}

func (e *fakeElement) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *fakeElement) get() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func quietLogger() *logging.Logger {
	return logging.NewWriterLogger("fixture", io.Discard)
}

func newRun(tb testing.TB) *report.Run {
	tb.Helper()
	run, err := report.Prepare(report.Options{Dir: tb.TempDir(), Logger: quietLogger()})
	if err != nil {
		tb.Fatalf("prepare run: %v", err)
	}
	return run
}

var fastPages = []pages.Option{
	pages.WithProbeTimeout(30 * time.Millisecond),
	pages.WithOverlayTimeout(30 * time.Millisecond),
}

func newHarness(run *report.Run, target *fakeTarget, provisionErr error, opts ...Option) *Harness {
	provision := func() (Target, error) {
		if provisionErr != nil {
			return nil, provisionErr
		}
		return target, nil
	}
	opts = append([]Option{WithLogger(quietLogger()), WithPageOptions(fastPages...)}, opts...)
	return New(run, provision, opts...)
}
