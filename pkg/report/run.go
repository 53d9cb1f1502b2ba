// Package report owns the artifacts of a test run: the timestamped HTML
// report, failure screenshots and their optional PDF bundle. A Run is
// created once per process by Prepare, shared by every test through its
// Recorder, and finished with Finish after the last test returns.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/atotto/clipboard"

	"github.com/entrhq/trackora/pkg/logging"
)

const (
	// DefaultDir is the reports directory relative to the working directory.
	DefaultDir = "reports"
	// DefaultMaxReports is how many report files Prepare keeps.
	DefaultMaxReports = 49
	// DefaultTitle heads the HTML report.
	DefaultTitle = "Trackora Automation Report"

	screenshotDirName = "screenshots"
	logDirName        = "logs"
)

// Options configures Prepare.
type Options struct {
	Dir        string
	MaxReports int
	Title      string
	Metadata   []Field
	// RunID tags the run; the logging run id when empty.
	RunID  string
	Logger *logging.Logger
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Run is the context of one test run.
type Run struct {
	ID            string
	Dir           string
	ScreenshotDir string
	LogDir        string
	ReportPath    string
	Started       time.Time
	Title         string
	Metadata      []Field

	recorder *Recorder
	logger   *logging.Logger
	now      func() time.Time

	// open and clip are swapped out in tests.
	open func(path string) error
	clip func(text string) error
}

// LogDir returns the run log directory under a reports directory.
func LogDir(dir string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, logDirName)
}

// Prepare creates the reports directory layout, reserves the report file
// with a placeholder and prunes older reports down to MaxReports, the new
// one included.
func Prepare(opts Options) (*Run, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.MaxReports <= 0 {
		opts.MaxReports = DefaultMaxReports
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = logging.RunID()
	}
	if opts.Logger == nil {
		opts.Logger = logging.MustLogger("report")
	}

	run := &Run{
		ID:            opts.RunID,
		Dir:           opts.Dir,
		ScreenshotDir: filepath.Join(opts.Dir, screenshotDirName),
		LogDir:        LogDir(opts.Dir),
		Title:         opts.Title,
		Metadata:      opts.Metadata,
		recorder:      NewRecorder(),
		logger:        opts.Logger,
		now:           opts.Now,
		open:          openInBrowser,
		clip:          clipboard.WriteAll,
	}

	for _, dir := range []string{run.Dir, run.ScreenshotDir, run.LogDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	started, path, err := reserveReport(run.Dir, opts.Now())
	if err != nil {
		return nil, err
	}
	run.Started = started
	run.ReportPath = path
	run.logger.Infof("report reserved at %s", path)

	removed, err := Prune(run.Dir, opts.MaxReports)
	for _, p := range removed {
		run.logger.Infof("deleted old report %s", p)
	}
	if err != nil {
		// Retention is housekeeping; the run goes ahead.
		run.logger.Warnf("report cleanup incomplete: %v", err)
	}

	return run, nil
}

// reserveReport creates an empty placeholder report named after at. When
// another run already owns that nanosecond the stamp moves forward.
func reserveReport(dir string, at time.Time) (time.Time, string, error) {
	for attempt := 0; attempt < 1000; attempt++ {
		path := filepath.Join(dir, ReportName(at))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0640)
		if err == nil {
			_, werr := f.WriteString(placeholderHTML)
			cerr := f.Close()
			if werr != nil {
				return at, path, fmt.Errorf("failed to write report placeholder: %w", werr)
			}
			if cerr != nil {
				return at, path, fmt.Errorf("failed to write report placeholder: %w", cerr)
			}
			return at, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return at, path, fmt.Errorf("failed to create report file: %w", err)
		}
		at = at.Add(time.Nanosecond)
	}
	return at, "", fmt.Errorf("failed to reserve a report name in %s", dir)
}

const placeholderHTML = "<!DOCTYPE html><html><body><p>Test run in progress.</p></body></html>\n"

// Recorder returns the run's entry collector.
func (r *Run) Recorder() *Recorder {
	return r.recorder
}

// Logger returns the run logger.
func (r *Run) Logger() *logging.Logger {
	return r.logger
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName turns a test name into a file name fragment.
func SanitizeName(name string) string {
	s := unsafeName.ReplaceAllString(name, "_")
	if len(s) > 120 {
		s = s[:120]
	}
	if s == "" {
		s = "test"
	}
	return s
}

// ScreenshotPath returns where the screenshot of test taken at at is
// stored.
func (r *Run) ScreenshotPath(test string, at time.Time) string {
	return filepath.Join(r.ScreenshotDir, SanitizeName(test)+"_"+at.Format(TimestampLayout)+".png")
}

// Now returns the run clock's current time.
func (r *Run) Now() time.Time {
	return r.now()
}

// FinishOptions selects the post-run actions.
type FinishOptions struct {
	AutoOpen          bool
	CopyPath          bool
	BundleScreenshots bool
}

// Result describes the written artifacts.
type Result struct {
	ReportPath string
	BundlePath string
	Summary    Summary
}

// Finish writes the report and runs the optional post-run actions. Only a
// failure to write the report itself is returned; bundle, clipboard and
// browser problems are logged.
func (r *Run) Finish(opts FinishOptions) (Result, error) {
	summary, err := r.Write()
	res := Result{ReportPath: r.ReportPath, Summary: summary}
	if err != nil {
		return res, err
	}

	if opts.BundleScreenshots {
		out := filepath.Join(r.ScreenshotDir, "failures_"+r.Started.Format(TimestampLayout)+".pdf")
		bundled, err := BundleScreenshots(out, r.recorder.Screenshots())
		if err != nil {
			r.logger.Errorf("%v", err)
		}
		res.BundlePath = bundled
	}

	abs, err := filepath.Abs(r.ReportPath)
	if err != nil {
		abs = r.ReportPath
	}

	if opts.CopyPath {
		if err := r.clip(abs); err != nil {
			r.logger.Warnf("failed to copy report path: %v", err)
		}
	}
	if opts.AutoOpen {
		if err := r.open(abs); err != nil {
			r.logger.Warnf("failed to open report: %v", err)
		}
	}

	return res, nil
}
