// Package console prints the user-facing progress and end-of-run summary of
// a test run. Detailed diagnostics go to the run log (pkg/logging); the
// console carries only what a person watching the run needs.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/trackora/pkg/report"
)

// Level is the console verbosity.
type Level int

const (
	// LevelQuiet shows only warnings, errors and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows run progress (default)
	LevelNormal
	// LevelVerbose adds per-test detail
	LevelVerbose
)

// ParseLevel converts "quiet", "normal" or "verbose" to a Level. Unknown
// values mean LevelNormal.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "quiet":
		return LevelQuiet
	case "verbose":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Console writes styled lines. Safe for concurrent use.
type Console struct {
	level  Level
	writer io.Writer
	mu     sync.Mutex
}

// New creates a console writing to stdout.
func New(level Level) *Console {
	return NewWriter(level, os.Stdout)
}

// NewWriter creates a console writing to w.
func NewWriter(level Level, w io.Writer) *Console {
	return &Console{level: level, writer: w}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	fmt.Fprintln(c.writer, s)
	c.mu.Unlock()
}

// Header prints a prominent header message
func (c *Console) Header(message string) {
	if c.level < LevelNormal {
		return
	}
	rule := strings.Repeat("=", 70)
	c.println("\n" + HeaderStyle.Render(rule) + "\n" + HeaderStyle.Render("  "+message) + "\n" + HeaderStyle.Render(rule))
}

// Section prints a section divider
func (c *Console) Section(title string) {
	if c.level < LevelNormal {
		return
	}
	c.println("\n" + SectionStyle.Render("▶ "+title) + "\n" + MutedStyle.Render(strings.Repeat("─", 50)))
}

// Successf prints a success message with checkmark
func (c *Console) Successf(format string, args ...interface{}) {
	if c.level < LevelNormal {
		return
	}
	c.println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Infof prints an informational message
func (c *Console) Infof(format string, args ...interface{}) {
	if c.level < LevelNormal {
		return
	}
	c.println(InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Verbosef prints detail shown only in verbose mode
func (c *Console) Verbosef(format string, args ...interface{}) {
	if c.level < LevelVerbose {
		return
	}
	c.println(MutedStyle.Render("→ " + fmt.Sprintf(format, args...)))
}

// Warningf prints a warning message
func (c *Console) Warningf(format string, args ...interface{}) {
	c.println(WarningStyle.Render("⚠ Warning: " + fmt.Sprintf(format, args...)))
}

// Errorf prints an error message
func (c *Console) Errorf(format string, args ...interface{}) {
	c.println(ErrorStyle.Render("✗ Error: " + fmt.Sprintf(format, args...)))
}

// TestResult prints one finished test.
func (c *Console) TestResult(e report.Entry) {
	if c.level < LevelNormal {
		return
	}
	line := fmt.Sprintf("  %s %s %s", outcomeMark(e.Outcome), e.Name, MutedStyle.Render("("+e.Duration.Round(time.Millisecond).String()+")"))
	c.println(line)
	if c.level >= LevelVerbose {
		for _, f := range e.Failures {
			c.println(MutedStyle.Render("      " + firstLine(f.Message)))
		}
		if e.Screenshot != "" {
			c.println(MutedStyle.Render("      screenshot: ") + PathStyle.Render(e.Screenshot))
		}
	}
}

// Summary prints the end-of-run totals and where the report is. It is
// printed at every level.
func (c *Console) Summary(res report.Result) {
	s := res.Summary
	rule := strings.Repeat("=", 70)

	var b strings.Builder
	b.WriteString("\n" + HeaderStyle.Render(rule) + "\n")
	b.WriteString(HeaderStyle.Render("  TEST RUN SUMMARY") + "\n")
	b.WriteString(HeaderStyle.Render(rule) + "\n")

	b.WriteString("  Status: ")
	if s.OK() {
		b.WriteString(SuccessStyle.Render("✓ PASSED"))
	} else {
		b.WriteString(ErrorStyle.Render("✗ FAILED"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  Tests: %d  passed: %s  failed: %s  setup failed: %s  skipped: %d\n",
		s.Total,
		SuccessStyle.Render(fmt.Sprint(s.Passed)),
		ErrorStyle.Render(fmt.Sprint(s.Failed)),
		WarningStyle.Render(fmt.Sprint(s.SetupFailed)),
		s.Skipped)
	fmt.Fprintf(&b, "  Duration: %s\n", s.Duration.Round(time.Second))

	if res.ReportPath != "" {
		b.WriteString("\n  Report: " + PathStyle.Render(res.ReportPath) + "\n")
	}
	if res.BundlePath != "" {
		b.WriteString("  Screenshots: " + PathStyle.Render(res.BundlePath) + "\n")
	}
	b.WriteString(HeaderStyle.Render(rule))

	c.println(b.String())
}

func outcomeMark(o report.Outcome) string {
	switch o {
	case report.OutcomePassed:
		return SuccessStyle.Render("✓")
	case report.OutcomeFailed:
		return ErrorStyle.Render("✗")
	case report.OutcomeSetupFailed:
		return WarningStyle.Render("!")
	default:
		return MutedStyle.Render("-")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
