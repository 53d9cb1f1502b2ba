package report

import (
	"os"
	"strconv"
	"time"
)

// Field is one row of the report's environment table.
type Field struct {
	Key   string
	Value string
}

// Environment describes the run for the report header.
type Environment struct {
	Env        string
	Browser    string
	BaseURL    string
	ClearCache bool
	Start      time.Time
}

// DefaultMetadata returns the environment table shown at the top of every
// report.
func DefaultMetadata(env Environment) []Field {
	if env.Start.IsZero() {
		env.Start = time.Now()
	}
	return []Field{
		{Key: "Project", Value: "Trackora Automation Framework"},
		{Key: "Application", Value: "Trackora"},
		{Key: "Environment", Value: orUnknown(env.Env)},
		{Key: "Browser", Value: orUnknown(env.Browser)},
		{Key: "Base URL", Value: orUnknown(env.BaseURL)},
		{Key: "Clear Cache", Value: strconv.FormatBool(env.ClearCache)},
		{Key: "Start Time", Value: env.Start.Format("2006-01-02 15:04:05")},
		{Key: "Executed By", Value: executedBy()},
	}
}

func executedBy() string {
	for _, k := range []string{"USERNAME", "USER"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "Unknown"
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
