package pages

import (
	"sync"
	"time"

	"github.com/entrhq/trackora/pkg/wait"
)

// fakeSession is an in-memory page: a set of elements keyed by locator.
type fakeSession struct {
	mu       sync.Mutex
	elements map[wait.Locator][]*fakeElement
	url      string
	loads    int
	engine   *wait.Engine
}

func newFakeSession(url string) *fakeSession {
	s := &fakeSession{elements: make(map[wait.Locator][]*fakeElement), url: url}
	s.engine = wait.New(s, wait.WithTimeout(150*time.Millisecond), wait.WithInterval(10*time.Millisecond), wait.WithPageLoadTimeout(150*time.Millisecond))
	return s
}

func (s *fakeSession) add(loc wait.Locator, el *fakeElement) *fakeElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[loc] = append(s.elements[loc], el)
	return el
}

func (s *fakeSession) remove(loc wait.Locator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.elements, loc)
}

func (s *fakeSession) setURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

func (s *fakeSession) Find(loc wait.Locator) ([]wait.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var els []wait.Element
	for _, el := range s.elements[loc] {
		els = append(els, el)
	}
	return els, nil
}

func (s *fakeSession) ReadyState() (string, error) { return wait.ReadyStateComplete, nil }
func (s *fakeSession) Wait() *wait.Engine          { return s.engine }
func (s *fakeSession) Title() (string, error)      { return "Trackora", nil }
func (s *fakeSession) Reload() error               { return s.WaitForLoad() }

func (s *fakeSession) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *fakeSession) Navigate(target string) error {
	s.setURL(target)
	return s.WaitForLoad()
}

func (s *fakeSession) WaitForLoad() error {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.engine.PageReady(0)
}

// fakeElement records interactions. onClick runs after every accepted click.
type fakeElement struct {
	mu        sync.Mutex
	hidden    bool
	disabled  bool
	intercept bool
	text      string
	value     string
	clicks    int
	forced    int
	scrolled  int
	selected  string
	onClick   func()
}

func visible(text string) *fakeElement { return &fakeElement{text: text} }

func (e *fakeElement) Visible() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.hidden, nil
}

func (e *fakeElement) Enabled() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disabled, nil
}

func (e *fakeElement) Obscured() (bool, error) { return false, nil }

func (e *fakeElement) Click() error {
	e.mu.Lock()
	if e.intercept {
		e.mu.Unlock()
		return wait.ErrIntercepted
	}
	e.clicks++
	fn := e.onClick
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (e *fakeElement) ForceClick() error {
	e.mu.Lock()
	e.forced++
	fn := e.onClick
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

func (e *fakeElement) Fill(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = value
	return nil
}

func (e *fakeElement) SelectOption(value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = value
	return nil
}

func (e *fakeElement) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *fakeElement) ScrollIntoView() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrolled++
	return nil
}

func (e *fakeElement) setText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

// elementState is a copy of what an element has recorded.
type elementState struct {
	value    string
	clicks   int
	forced   int
	scrolled int
	selected string
}

func (e *fakeElement) state() elementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return elementState{value: e.value, clicks: e.clicks, forced: e.forced, scrolled: e.scrolled, selected: e.selected}
}
