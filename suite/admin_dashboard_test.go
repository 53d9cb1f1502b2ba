package suite

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/testdata"
)

func init() {
	modules.MustRegister("admin_dashboard", func(t *testing.T) {
		t.Run("total expenses year view", testTotalExpensesYearView)
		t.Run("total revenue year view", testTotalRevenueYearView)
		t.Run("all metric cards visible", testAllMetricCardsVisible)
		t.Run("week view changes figures", testWeekViewChangesFigures)
		t.Run("navigation tabs", testDashboardNavigationTabs)
		t.Run("logout", testDashboardLogout)
	})
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func testTotalExpensesYearView(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		dashboard := c.Dashboard()

		require.True(c, dashboard.IsLoaded(), "dashboard should be loaded")
		step(c, dashboard.SelectView(pages.ViewYear), "select year view")

		assert.True(c, dashboard.IsMetricDisplayed(pages.MetricExpenses), "total expenses card should be visible")
		value, err := dashboard.MetricValue(pages.MetricExpenses)
		step(c, err, "read total expenses")
		assert.True(c, hasDigit(value), "total expenses %q should contain numbers", value)
	})
}

func testTotalRevenueYearView(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		dashboard := c.Dashboard()

		require.True(c, dashboard.IsLoaded(), "dashboard should be loaded")
		step(c, dashboard.SelectView(pages.ViewYear), "select year view")

		assert.True(c, dashboard.IsMetricDisplayed(pages.MetricRevenue), "total revenue card should be visible")
		value, err := dashboard.MetricValue(pages.MetricRevenue)
		step(c, err, "read total revenue")
		assert.True(c, hasDigit(value) || strings.ContainsAny(value, "$₹"), "total revenue %q should contain numbers or a currency symbol", value)
	})
}

func testAllMetricCardsVisible(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		dashboard := c.Dashboard()

		for _, m := range []pages.Metric{pages.MetricExpenses, pages.MetricRevenue, pages.MetricProfit} {
			assert.True(c, dashboard.IsMetricDisplayed(m), "%s card should be visible", m)
			value, err := dashboard.MetricValue(m)
			step(c, err, "read %s", m)
			assert.NotEmpty(c, value, "%s value should not be empty", m)
		}
	})
}

func testWeekViewChangesFigures(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		dashboard := c.Dashboard()

		step(c, dashboard.SelectView(pages.ViewYear), "select year view")
		year, err := dashboard.MetricValue(pages.MetricRevenue)
		step(c, err, "read yearly revenue")

		step(c, dashboard.SelectView(pages.ViewWeek), "select week view")
		week, err := dashboard.MetricValue(pages.MetricRevenue)
		step(c, err, "read weekly revenue")

		assert.True(c, hasDigit(week), "weekly revenue %q should contain numbers", week)
		assert.NotEqual(c, year, week, "week view should show different figures")
	})
}

func testDashboardNavigationTabs(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		dashboard := c.Dashboard()
		session := c.Session()

		tests := []struct {
			section pages.Section
			want    string
		}{
			{section: pages.SectionRevenuePanel, want: "revenue"},
			{section: pages.SectionEmployees, want: "employee"},
			{section: pages.SectionTimesheet, want: "timesheet"},
			{section: pages.SectionProjects, want: "project"},
		}
		for _, tt := range tests {
			step(c, dashboard.Open(tt.section), "open %s", tt.section)
			c.Logf("%s page URL is: %s", tt.section, session.URL())
			assert.Contains(c, strings.ToLower(session.URL()), tt.want, "should navigate to the %s page", tt.section)

			step(c, session.Navigate("/dashboard"), "return to dashboard")
		}
	})
}

func testDashboardLogout(t *testing.T) {
	c := harness.StartAuthenticated(t, "admin_dashboard", testdata.DefaultRole)
	c.Run(func() {
		login, err := c.Dashboard().Logout()
		step(c, err, "logout")
		assert.True(c, login.IsLoaded(), "login page should be shown after logout")
	})
}
