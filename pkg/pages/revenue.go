package pages

import (
	"fmt"
	"strings"

	"github.com/entrhq/trackora/pkg/wait"
)

// Revenue panel locator names.
const (
	RevenueTitle        = "page_title"
	DepartmentDropdown  = "department_dropdown"
	DepartmentSelection = "department_selection"
	WeekDropdown        = "week_dropdown"
	WeekSelection       = "week_selection"
	YearInput           = "year_input"
	ClearButton         = "clear_button"
	ExportButton        = "export_button"
	EmployeeCards       = "employee_cards"
)

// RevenueLocators locate the revenue panel filters and table.
var RevenueLocators = Table{
	RevenueTitle:        wait.XPath("//p[@class='revenue-head']"),
	DepartmentDropdown:  wait.XPath("//div[contains(@class, 'filter-section') and .//label[text()='Department:']]//div[contains(@class, 'ant-select-selector')]"),
	DepartmentSelection: wait.XPath("//div[contains(@class, 'filter-section') and .//label[text()='Department:']]//span[contains(@class, 'ant-select-selection-item')]"),
	WeekDropdown:        wait.XPath("//div[contains(@class, 'filter-section') and .//label[text()='Week:']]//div[contains(@class, 'ant-select-selector')]"),
	WeekSelection:       wait.XPath("//div[contains(@class, 'filter-section') and .//label[text()='Week:']]//span[contains(@class, 'ant-select-selection-item')]"),
	YearInput:           wait.XPath("//input[@placeholder='Select year']"),
	ClearButton:         wait.XPath("//button[contains(text(), 'Clear')]"),
	ExportButton:        wait.XPath("//span[contains(text(), 'Export')]"),
	EmployeeCards:       wait.XPath("//div[@class='ant-table-wrapper']"),
}

var (
	departmentOption = wait.XPathTemplate("//div[@class='ant-select-item-option-content' and normalize-space(text())=%s]")
	weekOption       = wait.XPathTemplate("//div[contains(@class, 'ant-select-item-option-content') and contains(text(), 'week %d')]")
)

// Filters is a set of revenue panel filters. Zero fields are left as they
// are.
type Filters struct {
	Department string
	Year       string
	Week       int
}

// RevenuePanel is the per-department revenue view.
type RevenuePanel struct {
	*Driver
}

// NewRevenuePanel wraps session as the revenue panel.
func NewRevenuePanel(session Session, opts ...Option) *RevenuePanel {
	return &RevenuePanel{Driver: NewDriver(session, RevenueLocators, opts...)}
}

// IsLoaded reports whether the revenue panel heading is shown.
func (p *RevenuePanel) IsLoaded() bool {
	return p.IsVisible(p.L(RevenueTitle))
}

// Heading returns the panel heading.
func (p *RevenuePanel) Heading() (string, error) {
	text, err := p.Text(p.L(RevenueTitle))
	return strings.TrimSpace(text), err
}

// SelectDepartment picks a department in the department filter.
func (p *RevenuePanel) SelectDepartment(name string) error {
	if err := p.ChooseOption(p.L(DepartmentDropdown), departmentOption.With(wait.XPathLiteral(name))); err != nil {
		return fmt.Errorf("select department %q: %w", name, err)
	}
	return nil
}

// SelectWeek picks a week number in the week filter.
func (p *RevenuePanel) SelectWeek(week int) error {
	if week < 1 || week > 53 {
		return fmt.Errorf("week %d out of range", week)
	}
	if err := p.ChooseOption(p.L(WeekDropdown), weekOption.With(week)); err != nil {
		return fmt.Errorf("select week %d: %w", week, err)
	}
	return nil
}

// SelectYear types a year into the year picker.
func (p *RevenuePanel) SelectYear(year string) error {
	if err := p.AwaitOverlayGone(); err != nil {
		return err
	}
	if err := p.Fill(p.L(YearInput), year); err != nil {
		return fmt.Errorf("select year %q: %w", year, err)
	}
	return nil
}

// ApplyFilters sets every non-zero filter in f.
func (p *RevenuePanel) ApplyFilters(f Filters) error {
	if f.Department != "" {
		if err := p.SelectDepartment(f.Department); err != nil {
			return err
		}
	}
	if f.Year != "" {
		if err := p.SelectYear(f.Year); err != nil {
			return err
		}
	}
	if f.Week != 0 {
		if err := p.SelectWeek(f.Week); err != nil {
			return err
		}
	}
	return nil
}

// SelectedDepartment returns the department filter's current value.
func (p *RevenuePanel) SelectedDepartment() (string, error) {
	text, err := p.Text(p.L(DepartmentSelection))
	return strings.TrimSpace(text), err
}

// SelectedWeek returns the week filter's current value.
func (p *RevenuePanel) SelectedWeek() (string, error) {
	text, err := p.Text(p.L(WeekSelection))
	return strings.TrimSpace(text), err
}

// ClearFilters resets all filters.
func (p *RevenuePanel) ClearFilters() error {
	if err := p.AwaitOverlayGone(); err != nil {
		return err
	}
	return p.Click(p.L(ClearButton))
}

// Export starts the report export.
func (p *RevenuePanel) Export() error {
	if err := p.AwaitOverlayGone(); err != nil {
		return err
	}
	return p.Click(p.L(ExportButton))
}

// IsDataTableDisplayed reports whether the employee revenue table is shown.
func (p *RevenuePanel) IsDataTableDisplayed() bool {
	return p.IsVisible(p.L(EmployeeCards))
}
