package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	reportPrefix = "report_"
	reportExt    = ".html"

	// TimestampLayout stamps report and screenshot names.
	TimestampLayout = "2006-01-02_15-04-05.000000000"
)

// ReportName returns the file name of a report created at t.
func ReportName(t time.Time) string {
	return reportPrefix + t.Format(TimestampLayout) + reportExt
}

// reportTime returns when the report at path was created: the timestamp in
// its name when it parses, the file's modification time otherwise.
func reportTime(path string) (time.Time, error) {
	name := filepath.Base(path)
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportExt)
	if t, err := time.ParseInLocation(TimestampLayout, stamp, time.Local); err == nil {
		return t, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Prune deletes the oldest report_*.html files in dir so that at most keep
// remain. It returns the removed paths. A keep below one keeps one.
func Prune(dir string, keep int) ([]string, error) {
	if keep < 1 {
		keep = 1
	}

	paths, err := filepath.Glob(filepath.Join(dir, reportPrefix+"*"+reportExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if len(paths) <= keep {
		return nil, nil
	}

	type dated struct {
		path string
		at   time.Time
	}
	reports := make([]dated, 0, len(paths))
	for _, p := range paths {
		at, err := reportTime(p)
		if err != nil {
			// Vanished between Glob and Stat.
			continue
		}
		reports = append(reports, dated{path: p, at: at})
	}

	// Oldest first; the name breaks ties so the order is stable.
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].at.Equal(reports[j].at) {
			return reports[i].at.Before(reports[j].at)
		}
		return reports[i].path < reports[j].path
	})

	var removed []string
	var firstErr error
	for len(reports) > keep {
		oldest := reports[0]
		reports = reports[1:]
		if err := os.Remove(oldest.path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete %s: %w", oldest.path, err)
			}
			continue
		}
		removed = append(removed, oldest.path)
	}
	return removed, firstErr
}
