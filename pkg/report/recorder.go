package report

import (
	"sort"
	"sync"
	"time"
)

// Outcome is the final state of one test.
type Outcome string

const (
	OutcomePassed      Outcome = "passed"
	OutcomeFailed      Outcome = "failed"
	OutcomeSetupFailed Outcome = "setup_failed"
	OutcomeSkipped     Outcome = "skipped"
)

// FailureKind separates broken infrastructure from failed checks.
type FailureKind string

const (
	KindNone           FailureKind = ""
	KindInfrastructure FailureKind = "infrastructure"
	KindAssertion      FailureKind = "assertion"
)

// Failure is one recorded error, with the stack of the call that raised it.
type Failure struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Entry is the report row for one test.
type Entry struct {
	Name     string        `json:"name"`
	Module   string        `json:"module"`
	Outcome  Outcome       `json:"outcome"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Failures []Failure     `json:"failures,omitempty"`
	Logs     []string      `json:"logs,omitempty"`

	// Screenshot is the path of the failure screenshot, empty when none
	// was taken.
	Screenshot string `json:"screenshot,omitempty"`
	// DOMExcerpt is a cleaned copy of the page at failure time.
	DOMExcerpt string `json:"dom_excerpt,omitempty"`
	// ArtifactErrors lists artifacts that could not be captured.
	ArtifactErrors []string `json:"artifact_errors,omitempty"`
}

// Failed reports whether the entry counts as a failure.
func (e Entry) Failed() bool {
	return e.Outcome == OutcomeFailed || e.Outcome == OutcomeSetupFailed
}

// Summary holds the run totals.
type Summary struct {
	Total       int
	Passed      int
	Failed      int
	SetupFailed int
	Skipped     int
	Duration    time.Duration
}

// OK reports whether nothing failed.
func (s Summary) OK() bool {
	return s.Failed == 0 && s.SetupFailed == 0
}

// Recorder collects entries from tests running in parallel.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add appends an entry.
func (r *Recorder) Add(e Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
}

// Entries returns a copy of the entries ordered by start time.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// Summary totals the recorded entries.
func (r *Recorder) Summary() Summary {
	var s Summary
	for _, e := range r.Entries() {
		s.Total++
		s.Duration += e.Duration
		switch e.Outcome {
		case OutcomePassed:
			s.Passed++
		case OutcomeFailed:
			s.Failed++
		case OutcomeSetupFailed:
			s.SetupFailed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}

// Screenshots returns the screenshot paths of failed entries, in entry
// order.
func (r *Recorder) Screenshots() []string {
	var paths []string
	for _, e := range r.Entries() {
		if e.Screenshot != "" {
			paths = append(paths, e.Screenshot)
		}
	}
	return paths
}
