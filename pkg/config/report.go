package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDReport is the identifier for the report settings section
	SectionIDReport = "report"

	defaultAutoOpenReport = false
	defaultCopyReportPath = false
)

// ReportSection holds the persisted report preferences.
type ReportSection struct {
	AutoOpenReport bool `json:"auto_open_report"`
	CopyReportPath bool `json:"copy_report_path"`
	mu             sync.RWMutex
}

// NewReportSection creates a report section with default settings.
func NewReportSection() *ReportSection {
	return &ReportSection{
		AutoOpenReport: defaultAutoOpenReport,
		CopyReportPath: defaultCopyReportPath,
	}
}

// ID returns the section identifier.
func (s *ReportSection) ID() string {
	return SectionIDReport
}

// Title returns the section title.
func (s *ReportSection) Title() string {
	return "Report Settings"
}

// Description returns the section description.
func (s *ReportSection) Description() string {
	return "Control what happens to the HTML report once a run finishes."
}

// Data returns the current configuration data.
func (s *ReportSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"auto_open_report": s.AutoOpenReport,
		"copy_report_path": s.CopyReportPath,
	}
}

// SetData updates the configuration from the provided data.
func (s *ReportSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "auto_open_report":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for auto_open_report: expected bool, got %T", value)
			}
			s.AutoOpenReport = enabled

		case "copy_report_path":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for copy_report_path: expected bool, got %T", value)
			}
			s.CopyReportPath = enabled

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration. Both settings are plain
// toggles, so any stored combination is valid.
func (s *ReportSection) Validate() error {
	return nil
}

// Reset resets the section to default configuration.
func (s *ReportSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.AutoOpenReport = defaultAutoOpenReport
	s.CopyReportPath = defaultCopyReportPath
}

// AutoOpen returns the persisted auto-open preference.
func (s *ReportSection) AutoOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AutoOpenReport
}

// CopyPath returns whether the report path is copied to the clipboard.
func (s *ReportSection) CopyPath() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CopyReportPath
}

// SetAutoOpen sets the persisted auto-open preference.
func (s *ReportSection) SetAutoOpen(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AutoOpenReport = enabled
}

// SetCopyPath sets whether the report path is copied to the clipboard.
func (s *ReportSection) SetCopyPath(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CopyReportPath = enabled
}

// ResolveAutoOpen decides whether the report is opened after the run. An
// explicitly passed command line value wins over the persisted one; a nil
// flag means the option was not given.
func ResolveAutoOpen(flag *bool, section *ReportSection) bool {
	if flag != nil {
		return *flag
	}
	if section == nil {
		return defaultAutoOpenReport
	}
	return section.AutoOpen()
}

// OpenReportSettings loads the report section from the store at path
// (DefaultStorePath when empty). Invalid stored data falls back to defaults
// and is returned as a non-fatal error alongside the section.
func OpenReportSettings(path string) (*ReportSection, *Manager, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return NewReportSection(), nil, err
	}

	section := NewReportSection()
	manager := NewManager(store)
	if err := manager.RegisterSection(section); err != nil {
		return section, nil, err
	}
	return section, manager, manager.LoadAll()
}
