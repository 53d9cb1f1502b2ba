// Package config holds the two kinds of configuration a run consumes: the
// YAML run settings checked in next to the suite, and the per-user settings
// store that persists preferences such as opening the report after a run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the settings file.
const (
	EnvBaseURL  = "TRACKORA_BASE_URL"
	EnvBrowser  = "TRACKORA_BROWSER"
	EnvHeadless = "TRACKORA_HEADLESS"
)

// DefaultMaxReports is the number of HTML reports kept in the reports
// directory.
const DefaultMaxReports = 49

// Settings is the run configuration file.
type Settings struct {
	// Browser selects the browser kind: chrome or firefox
	Browser string `yaml:"browser" json:"browser"`
	// BaseURL is the application entry point
	BaseURL string `yaml:"base_url" json:"base_url"`
	// ImplicitWait is the default bound on every element wait
	ImplicitWait Duration `yaml:"implicit_wait" json:"implicit_wait"`
	// ClearCache launches each session in privacy mode
	ClearCache bool `yaml:"clear_cache" json:"clear_cache"`
	// Env is the environment label shown in the report
	Env string `yaml:"env" json:"env"`

	Headless        bool             `yaml:"headless" json:"headless"`
	Viewport        ViewportSettings `yaml:"viewport" json:"viewport"`
	PageLoadTimeout Duration         `yaml:"page_load_timeout" json:"page_load_timeout"`
	// AlertGrace is how long authentication waits for a post-login alert
	AlertGrace Duration `yaml:"alert_grace" json:"alert_grace"`

	// Credentials is the path of the users and test data document, relative
	// to the settings file
	Credentials string `yaml:"credentials" json:"credentials"`

	// ModuleOrder lists module name patterns that run first, in order
	ModuleOrder []string `yaml:"module_order" json:"module_order"`

	Reports ReportSettings `yaml:"reports" json:"reports"`

	// SettingsStore overrides the persisted settings path
	SettingsStore string `yaml:"settings_store" json:"settings_store"`
}

// ViewportSettings is the browser window size.
type ViewportSettings struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// ReportSettings configures the report directory.
type ReportSettings struct {
	Dir               string `yaml:"dir" json:"dir"`
	MaxReports        int    `yaml:"max_reports" json:"max_reports"`
	BundleScreenshots bool   `yaml:"bundle_screenshots" json:"bundle_screenshots"`
}

// Duration accepts either a whole number of seconds or a Go duration string.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration reads "10" as ten seconds and anything else as a Go
// duration string.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use seconds or a value like 1500ms", s)
	}
	return d, nil
}

// DefaultSettings returns the settings used for anything the file leaves
// out.
func DefaultSettings() *Settings {
	return &Settings{
		Browser:         "chrome",
		ImplicitWait:    Duration(10 * time.Second),
		ClearCache:      true,
		Env:             "Unknown",
		Headless:        true,
		Viewport:        ViewportSettings{Width: 1920, Height: 1080},
		PageLoadTimeout: Duration(30 * time.Second),
		AlertGrace:      Duration(5 * time.Second),
		Credentials:     "testdata.json",
		ModuleOrder:     []string{"admin_login", "admin_dashboard", "admin_revenue_panel"},
		Reports: ReportSettings{
			Dir:        "reports",
			MaxReports: DefaultMaxReports,
		},
	}
}

// LoadSettings reads path over the defaults and applies environment
// overrides. The result is validated.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes a settings document over the defaults.
func ParseSettings(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyEnv overrides fields from the TRACKORA_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		s.BaseURL = v
	}
	if v, ok := lookup(EnvBrowser); ok && v != "" {
		s.Browser = v
	}
	if v, ok := lookup(EnvHeadless); ok && v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		s.Headless = headless
	}
	return nil
}

// Validate validates the settings and fills zero values with defaults.
// An empty base URL is allowed; the suite then serves its own stand-in
// application.
func (s *Settings) Validate() error {
	defaults := DefaultSettings()

	switch strings.ToLower(strings.TrimSpace(s.Browser)) {
	case "":
		s.Browser = defaults.Browser
	case "chrome", "chromium", "firefox":
	default:
		return fmt.Errorf("unsupported browser: %s (must be 'chrome' or 'firefox')", s.Browser)
	}

	if s.ImplicitWait < 0 {
		return fmt.Errorf("implicit_wait cannot be negative")
	}
	if s.ImplicitWait == 0 {
		s.ImplicitWait = defaults.ImplicitWait
	}
	if s.PageLoadTimeout < 0 {
		return fmt.Errorf("page_load_timeout cannot be negative")
	}
	if s.PageLoadTimeout == 0 {
		s.PageLoadTimeout = defaults.PageLoadTimeout
	}
	if s.AlertGrace < 0 {
		return fmt.Errorf("alert_grace cannot be negative")
	}

	if s.Viewport.Width < 0 || s.Viewport.Height < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}
	if s.Viewport.Width == 0 || s.Viewport.Height == 0 {
		s.Viewport = defaults.Viewport
	}

	if s.Reports.MaxReports < 0 {
		return fmt.Errorf("max_reports cannot be negative")
	}
	if s.Reports.MaxReports == 0 {
		s.Reports.MaxReports = defaults.Reports.MaxReports
	}
	if s.Reports.Dir == "" {
		s.Reports.Dir = defaults.Reports.Dir
	}
	if s.Env == "" {
		s.Env = defaults.Env
	}

	return nil
}

// CredentialsPath resolves the credentials document against the directory
// of the settings file it was read from.
func (s *Settings) CredentialsPath(settingsPath string) string {
	if s.Credentials == "" || filepath.IsAbs(s.Credentials) {
		return s.Credentials
	}
	return filepath.Join(filepath.Dir(settingsPath), s.Credentials)
}
