package pages

import (
	"fmt"
	"strings"

	"github.com/entrhq/trackora/pkg/wait"
)

// Dashboard locator names.
const (
	DashboardTab       = "dashboard_tab"
	RevenuePanelTab    = "revenue_panel_tab"
	EmployeeTab        = "employee_tab"
	TimesheetTab       = "timesheet_tab"
	ProjectTab         = "project_tab"
	YearRadio          = "year_radio"
	WeekRadio          = "week_radio"
	TotalExpensesCard  = "total_expenses_card"
	TotalExpensesValue = "total_expenses_value"
	TotalRevenueCard   = "total_revenue_card"
	TotalRevenueValue  = "total_revenue_value"
	TotalProfitCard    = "total_profit_card"
	TotalProfitValue   = "total_profit_value"
	UserProfile        = "user_profile"
	LogoutButton       = "logout_button"
)

// DashboardLocators locate the dashboard and the navigation bar.
var DashboardLocators = Table{
	DashboardTab:       wait.XPath("//a[@class='nav-link active']"),
	RevenuePanelTab:    wait.XPath("//a[@href='/RevenuePanel']"),
	EmployeeTab:        wait.XPath("//a[@href='/employees']"),
	TimesheetTab:       wait.XPath("//a[@href='/timesheet']"),
	ProjectTab:         wait.XPath("//a[@href='/project']"),
	YearRadio:          wait.XPath("//input[@type='radio' and @value='year']"),
	WeekRadio:          wait.XPath("//input[@type='radio' and @value='week']"),
	TotalExpensesCard:  wait.XPath("//div[@class='metric-card'][1]"),
	TotalExpensesValue: wait.XPath("//div[@class='metric-card'][1]//div[@class='metric-amount']"),
	TotalRevenueCard:   wait.XPath("//div[@class='metric-card'][2]"),
	TotalRevenueValue:  wait.XPath("//div[@class='metric-card'][2]//div[@class='metric-amount']"),
	TotalProfitCard:    wait.XPath("//div[@class='metric-card'][3]"),
	TotalProfitValue:   wait.XPath("//div[@class='metric-card'][3]//div[@class='metric-amount']"),
	UserProfile:        wait.XPath("//button[@type='button']"),
	LogoutButton:       wait.XPath("//strong[text()='Logout']"),
}

// Metric is one of the dashboard's summary cards.
type Metric string

const (
	MetricExpenses Metric = "expenses"
	MetricRevenue  Metric = "revenue"
	MetricProfit   Metric = "profit"
)

var metricLocators = map[Metric][2]string{
	MetricExpenses: {TotalExpensesCard, TotalExpensesValue},
	MetricRevenue:  {TotalRevenueCard, TotalRevenueValue},
	MetricProfit:   {TotalProfitCard, TotalProfitValue},
}

// View is the period the dashboard figures cover.
type View string

const (
	ViewYear View = "year"
	ViewWeek View = "week"
)

// Section is a navigation bar destination.
type Section string

const (
	SectionRevenuePanel Section = "revenue_panel"
	SectionEmployees    Section = "employees"
	SectionTimesheet    Section = "timesheet"
	SectionProjects     Section = "projects"
)

var sectionTabs = map[Section]string{
	SectionRevenuePanel: RevenuePanelTab,
	SectionEmployees:    EmployeeTab,
	SectionTimesheet:    TimesheetTab,
	SectionProjects:     ProjectTab,
}

// Dashboard is the landing page after login.
type Dashboard struct {
	*Driver
	opts []Option
}

// NewDashboard wraps session as the dashboard.
func NewDashboard(session Session, opts ...Option) *Dashboard {
	return &Dashboard{Driver: NewDriver(session, DashboardLocators, opts...), opts: opts}
}

// IsLoaded reports whether the dashboard is the active page.
func (p *Dashboard) IsLoaded() bool {
	return strings.Contains(strings.ToLower(p.URL()), "dashboard") && p.IsVisible(p.L(DashboardTab))
}

// SelectView switches the figures to the given period.
func (p *Dashboard) SelectView(view View) error {
	var name string
	switch view {
	case ViewYear:
		name = YearRadio
	case ViewWeek:
		name = WeekRadio
	default:
		return fmt.Errorf("unknown dashboard view %q", view)
	}
	if err := p.AwaitOverlayGone(); err != nil {
		return err
	}
	return p.Click(p.L(name))
}

// MetricValue returns the figure shown on a summary card.
func (p *Dashboard) MetricValue(m Metric) (string, error) {
	names, ok := metricLocators[m]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", m)
	}
	if err := p.AwaitOverlayGone(); err != nil {
		return "", err
	}
	text, err := p.Text(p.L(names[1]))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// IsMetricDisplayed reports whether a summary card is shown.
func (p *Dashboard) IsMetricDisplayed(m Metric) bool {
	names, ok := metricLocators[m]
	if !ok {
		return false
	}
	return p.IsVisible(p.L(names[0]))
}

// Open navigates to a section through the navigation bar.
func (p *Dashboard) Open(section Section) error {
	name, ok := sectionTabs[section]
	if !ok {
		return fmt.Errorf("unknown section %q", section)
	}
	if err := p.AwaitOverlayGone(); err != nil {
		return err
	}
	if err := p.Click(p.L(name)); err != nil {
		return fmt.Errorf("open %s: %w", section, err)
	}
	return p.WaitForLoad()
}

// OpenRevenuePanel navigates to the revenue panel.
func (p *Dashboard) OpenRevenuePanel() (*RevenuePanel, error) {
	if err := p.Open(SectionRevenuePanel); err != nil {
		return nil, err
	}
	return NewRevenuePanel(p.Session(), p.opts...), nil
}

// Logout signs out through the profile menu.
func (p *Dashboard) Logout() (*Login, error) {
	if err := p.AwaitOverlayGone(); err != nil {
		return nil, err
	}
	if err := p.Click(p.L(UserProfile)); err != nil {
		return nil, fmt.Errorf("open profile menu: %w", err)
	}
	if err := p.Click(p.L(LogoutButton)); err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}
	if err := p.WaitForLoad(); err != nil {
		return nil, err
	}
	return NewLogin(p.Session(), p.opts...), nil
}
