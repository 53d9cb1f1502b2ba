package main

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"
)

// Event is one line of go test -json output.
type Event struct {
	Time    time.Time `json:"Time"`
	Action  string    `json:"Action"`
	Package string    `json:"Package"`
	Test    string    `json:"Test"`
	Elapsed float64   `json:"Elapsed"`
	Output  string    `json:"Output"`
}

// Test2json actions.
const (
	ActionRun    = "run"
	ActionPass   = "pass"
	ActionFail   = "fail"
	ActionSkip   = "skip"
	ActionOutput = "output"
)

// readEvents decodes events from r until EOF. Lines that are not JSON, such
// as build failures on older toolchains, become output events.
func readEvents(r io.Reader, fn func(Event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var e Event
		if err := json.Unmarshal(line, &e); err != nil || e.Action == "" {
			fn(Event{Action: ActionOutput, Output: string(line) + "\n"})
			continue
		}
		fn(e)
	}
	return scanner.Err()
}

// Result is a finished leaf test.
type Result struct {
	Test    string
	Action  string
	Elapsed time.Duration
	// Output is what the test printed, framing lines removed.
	Output []string
}

// Tally follows a run. Only leaf tests are counted; a test that has
// subtests is a group.
type Tally struct {
	Passed  int
	Failed  int
	Skipped int
	// PackageOutput is output not attributed to any test, such as the
	// suite's end-of-run summary.
	PackageOutput []string
	// PackageFailed is set when the package itself failed, e.g. it did not
	// build or TestMain returned non-zero.
	PackageFailed bool
	Elapsed       time.Duration

	started map[string]time.Time
	groups  map[string]bool
	output  map[string][]string
	order   []string
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{
		started: make(map[string]time.Time),
		groups:  make(map[string]bool),
		output:  make(map[string][]string),
	}
}

// Apply folds e into the tally and returns the result when e finishes a
// leaf test.
func (t *Tally) Apply(e Event) (Result, bool) {
	if e.Test == "" {
		switch e.Action {
		case ActionOutput:
			t.PackageOutput = append(t.PackageOutput, strings.TrimRight(e.Output, "\n"))
		case ActionFail:
			t.PackageFailed = true
			t.Elapsed = seconds(e.Elapsed)
		case ActionPass, ActionSkip:
			t.Elapsed = seconds(e.Elapsed)
		}
		return Result{}, false
	}

	switch e.Action {
	case ActionRun:
		t.started[e.Test] = e.Time
		t.order = append(t.order, e.Test)
		if i := strings.LastIndexByte(e.Test, '/'); i > 0 {
			t.groups[e.Test[:i]] = true
		}
	case ActionOutput:
		if !isFraming(e.Output) {
			t.output[e.Test] = append(t.output[e.Test], strings.TrimRight(e.Output, "\n"))
		}
	case ActionPass, ActionFail, ActionSkip:
		delete(t.started, e.Test)
		out := t.output[e.Test]
		delete(t.output, e.Test)
		if t.groups[e.Test] {
			return Result{}, false
		}
		switch e.Action {
		case ActionPass:
			t.Passed++
		case ActionFail:
			t.Failed++
		case ActionSkip:
			t.Skipped++
		}
		return Result{Test: e.Test, Action: e.Action, Elapsed: seconds(e.Elapsed), Output: out}, true
	}
	return Result{}, false
}

// Finished returns the number of leaf tests that ended.
func (t *Tally) Finished() int {
	return t.Passed + t.Failed + t.Skipped
}

// Running returns the tests that started and have not ended, oldest first.
// Groups are left out.
func (t *Tally) Running() []string {
	var names []string
	for name := range t.started {
		if !t.groups[name] {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return t.started[names[i]].Before(t.started[names[j]])
	})
	return names
}

// Seen returns the number of leaf tests started so far.
func (t *Tally) Seen() int {
	n := 0
	for _, name := range t.order {
		if !t.groups[name] {
			n++
		}
	}
	return n
}

// OK reports whether nothing failed.
func (t *Tally) OK() bool {
	return t.Failed == 0 && !t.PackageFailed
}

func isFraming(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"=== RUN", "=== PAUSE", "=== CONT", "=== NAME", "--- PASS", "--- FAIL", "--- SKIP"} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
