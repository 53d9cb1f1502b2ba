package report

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

var pageTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": formatDuration,
}).Parse(reportTemplate))

type pageView struct {
	Title     string
	Generated string
	Metadata  []Field
	Summary   Summary
	Entries   []entryView
	RunID     string
	LogDir    string
}

type entryView struct {
	Entry
	Anchor         string
	FailureViews   []failureView
	ScreenshotURI  template.URL
	ScreenshotName string
}

type failureView struct {
	Message string
	Stack   template.HTML
}

// Write renders the report from the entries recorded so far, replacing the
// placeholder. It can be called more than once; the last call wins.
func (r *Run) Write() (Summary, error) {
	entries := r.recorder.Entries()
	summary := r.recorder.Summary()

	view := pageView{
		Title:     r.Title,
		Generated: r.now().Format("2006-01-02 15:04:05"),
		Metadata:  r.Metadata,
		Summary:   summary,
		RunID:     r.ID,
		LogDir:    r.LogDir,
	}
	for i, e := range entries {
		view.Entries = append(view.Entries, r.viewOf(i, e))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return summary, fmt.Errorf("failed to render report: %w", err)
	}

	if err := writeAtomic(r.ReportPath, buf.Bytes()); err != nil {
		return summary, err
	}
	r.logger.Infof("report written to %s (%d tests, %d failed)", r.ReportPath, summary.Total, summary.Failed+summary.SetupFailed)
	return summary, nil
}

func (r *Run) viewOf(i int, e Entry) entryView {
	v := entryView{Entry: e, Anchor: fmt.Sprintf("test-%d", i+1)}
	for _, f := range e.Failures {
		v.FailureViews = append(v.FailureViews, failureView{Message: f.Message, Stack: highlightStack(f.Stack)})
	}
	if e.Screenshot == "" {
		return v
	}

	data, err := os.ReadFile(e.Screenshot)
	if err != nil {
		capErr := &ArtifactCaptureError{Artifact: "report screenshot", Path: e.Screenshot, Err: err}
		r.logger.Warnf("%v", capErr)
		v.ArtifactErrors = append(append([]string(nil), v.ArtifactErrors...), capErr.Error())
		return v
	}
	v.ScreenshotName = filepath.Base(e.Screenshot)
	v.ScreenshotURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(data))
	return v
}

// highlightStack renders a Go stack trace as inline-styled HTML.
func highlightStack(stack string) template.HTML {
	if stack == "" {
		return ""
	}

	lexer := lexers.Get("go")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, stack)
	if err != nil {
		return plainStack(stack)
	}

	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	if err := formatter.Format(&buf, styles.Get("github"), iter); err != nil {
		return plainStack(stack)
	}
	return template.HTML(buf.String()) //nolint:gosec // chroma escapes token text
}

func plainStack(stack string) template.HTML {
	return template.HTML("<pre>" + template.HTMLEscapeString(stack) + "</pre>") //nolint:gosec
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

// writeAtomic replaces path through a temp file in the same directory. The
// temp name does not match the report pattern, so Prune never sees it.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0640); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace report: %w", err)
	}
	return nil
}
