package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadReport(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestWriteRendersEntries(t *testing.T) {
	start := time.Date(2025, 5, 5, 10, 0, 0, 0, time.Local)
	run, err := Prepare(Options{
		Dir:    t.TempDir(),
		Logger: quietLogger(),
		RunID:  "run-42",
		Metadata: DefaultMetadata(Environment{
			Env:        "QA",
			Browser:    "chrome",
			BaseURL:    "https://trackora.example",
			ClearCache: true,
			Start:      start,
		}),
	})
	require.NoError(t, err)

	shot := run.ScreenshotPath("TestRevenuePanel", start)
	writePNG(t, shot)

	rec := run.Recorder()
	rec.Add(Entry{
		Name:     "TestAdminLogin",
		Module:   "admin_login",
		Outcome:  OutcomePassed,
		Started:  start,
		Duration: 1200 * time.Millisecond,
		Logs:     []string{"[2025-05-05 10:00:00.000] [TestAdminLogin] [INFO] logged in"},
	})
	rec.Add(Entry{
		Name:       "TestRevenuePanel",
		Module:     "admin_revenue_panel",
		Outcome:    OutcomeFailed,
		Kind:       KindAssertion,
		Started:    start.Add(2 * time.Second),
		Duration:   3 * time.Second,
		Failures:   []Failure{{Message: "expected <Revenue> heading", Stack: "goroutine 7 [running]:\nmain.check()\n\t/suite/revenue_test.go:42 +0x1d"}},
		Screenshot: shot,
		DOMExcerpt: `<p class="revenue-head">`,
	})
	rec.Add(Entry{
		Name:     "TestDashboard",
		Module:   "admin_dashboard",
		Outcome:  OutcomeSetupFailed,
		Kind:     KindInfrastructure,
		Started:  start.Add(time.Second),
		Failures: []Failure{{Message: "launch chrome: executable not found"}},
	})

	summary, err := run.Write()
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Passed: 1, Failed: 1, SetupFailed: 1, Duration: 4200 * time.Millisecond}, summary)
	assert.False(t, summary.OK())

	doc := loadReport(t, run.ReportPath)

	assert.Equal(t, DefaultTitle, doc.Find("title").Text())
	assert.Contains(t, doc.Find("header p").Text(), "run-42")

	env := map[string]string{}
	doc.Find("table#environment tr").Each(func(_ int, s *goquery.Selection) {
		env[s.Find("th").Text()] = s.Find("td").Text()
	})
	assert.Equal(t, "Trackora Automation Framework", env["Project"])
	assert.Equal(t, "QA", env["Environment"])
	assert.Equal(t, "https://trackora.example", env["Base URL"])
	assert.Equal(t, "true", env["Clear Cache"])
	assert.Equal(t, "2025-05-05 10:00:00", env["Start Time"])
	assert.NotEmpty(t, env["Executed By"])

	assert.Equal(t, "1", doc.Find("#summary .passed b").Text())
	assert.Equal(t, "1", doc.Find("#summary .failed b").Text())
	assert.Equal(t, "1", doc.Find("#summary .setup_failed b").Text())

	// Entries are ordered by start time.
	var names []string
	doc.Find("section.test .test-name").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	assert.Equal(t, []string{"TestAdminLogin", "TestDashboard", "TestRevenuePanel"}, names)

	failed := doc.Find(`section.test[data-outcome="failed"]`)
	require.Equal(t, 1, failed.Length())
	assert.Equal(t, "assertion", failed.AttrOr("data-kind", ""))
	assert.Contains(t, failed.Find(".failure .message").Text(), "expected <Revenue> heading")
	assert.Contains(t, failed.Find(".stack").Text(), "revenue_test.go:42")
	src, ok := failed.Find("img.screenshot").Attr("src")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src, "data:image/png;base64,"), "screenshot not embedded: %.40s", src)
	assert.Contains(t, failed.Find(".dom pre").Text(), `<p class="revenue-head">`)

	setup := doc.Find(`section.test[data-outcome="setup_failed"]`)
	assert.Equal(t, "infrastructure", setup.AttrOr("data-kind", ""))
	assert.Equal(t, 0, setup.Find("img.screenshot").Length())

	passed := doc.Find(`section.test[data-outcome="passed"]`)
	assert.Contains(t, passed.Find(".logs pre").Text(), "logged in")
}

func TestWriteWithMissingScreenshot(t *testing.T) {
	run, err := Prepare(Options{Dir: t.TempDir(), Logger: quietLogger()})
	require.NoError(t, err)

	run.Recorder().Add(Entry{
		Name:       "TestGone",
		Outcome:    OutcomeFailed,
		Screenshot: filepath.Join(run.ScreenshotDir, "gone.png"),
	})

	_, err = run.Write()
	require.NoError(t, err)

	doc := loadReport(t, run.ReportPath)
	assert.Equal(t, 0, doc.Find("img.screenshot").Length())
	assert.Contains(t, doc.Find(".artifact-error").Text(), "gone.png")
}

func TestWriteEmptyRun(t *testing.T) {
	run, err := Prepare(Options{Dir: t.TempDir(), Logger: quietLogger()})
	require.NoError(t, err)

	summary, err := run.Write()
	require.NoError(t, err)
	assert.True(t, summary.OK())

	doc := loadReport(t, run.ReportPath)
	assert.Equal(t, 1, doc.Find("p.empty").Length())

	// Only the report itself is left in the directory; no temp files.
	assert.Equal(t, []string{filepath.Base(run.ReportPath)}, listReports(t, run.Dir))
	tmps, _ := filepath.Glob(filepath.Join(run.Dir, ".report-*"))
	assert.Empty(t, tmps)
}

func TestHighlightStack(t *testing.T) {
	assert.Empty(t, string(highlightStack("")))

	out := string(highlightStack("main.run(0x1)\n\t/app/main.go:10 +0x2 <script>"))
	assert.Contains(t, out, "main.go")
	assert.NotContains(t, out, "<script>")
}

func TestRecorderConcurrentAdd(t *testing.T) {
	rec := NewRecorder()
	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			rec.Add(Entry{Name: "t", Outcome: OutcomePassed, Started: time.Unix(int64(i), 0)})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	entries := rec.Entries()
	require.Len(t, entries, 20)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Started.Before(entries[i-1].Started))
	}
	assert.Equal(t, 20, rec.Summary().Passed)
}
