package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trackora/pkg/fixture"
	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/testdata"
)

func init() {
	modules.MustRegister("admin_revenue_panel", func(t *testing.T) {
		t.Run("loads correctly", testRevenuePanelLoads)
		t.Run("filters", testRevenuePanelFilters)
		t.Run("week filter", testRevenuePanelWeekFilter)
		t.Run("export", testRevenuePanelExport)
	})
}

// filterDepartment is the department the revenue checks filter on.
func filterDepartment() string {
	if data != nil {
		if rec, ok := data.Department("revenue"); ok {
			if name := rec.String("name"); name != "" {
				return name
			}
		}
	}
	return "Java"
}

// withRevenuePanel logs in, opens the revenue panel and runs body there.
func withRevenuePanel(t *testing.T, body func(c *fixture.Case, panel *pages.RevenuePanel)) {
	c := harness.StartAuthenticated(t, "admin_revenue_panel", testdata.DefaultRole)
	c.Run(func() {
		panel, err := c.Dashboard().OpenRevenuePanel()
		step(c, err, "open revenue panel")
		require.True(c, panel.IsLoaded(), "revenue panel should be loaded")
		body(c, panel)
	})
}

func testRevenuePanelLoads(t *testing.T) {
	withRevenuePanel(t, func(c *fixture.Case, panel *pages.RevenuePanel) {
		heading, err := panel.Heading()
		step(c, err, "read heading")
		assert.Contains(c, heading, "Revenue")

		step(c, panel.ApplyFilters(pages.Filters{Department: filterDepartment(), Year: "2025"}), "apply filters")
		assert.True(c, panel.IsDataTableDisplayed(), "employee revenue data should be displayed")
	})
}

func testRevenuePanelFilters(t *testing.T) {
	withRevenuePanel(t, func(c *fixture.Case, panel *pages.RevenuePanel) {
		department := filterDepartment()

		step(c, panel.ApplyFilters(pages.Filters{Department: department, Year: "2025"}), "apply filters")
		assert.True(c, panel.IsDataTableDisplayed(), "employee cards should be displayed after applying filters")

		selected, err := panel.SelectedDepartment()
		step(c, err, "read department filter")
		assert.Equal(c, department, selected)

		step(c, panel.ClearFilters(), "clear filters")
		selected, err = panel.SelectedDepartment()
		step(c, err, "read department filter")
		assert.NotEqual(c, department, selected, "clear should reset the department filter")
	})
}

func testRevenuePanelWeekFilter(t *testing.T) {
	withRevenuePanel(t, func(c *fixture.Case, panel *pages.RevenuePanel) {
		step(c, panel.SelectWeek(2), "select week")
		week, err := panel.SelectedWeek()
		step(c, err, "read week filter")
		assert.Equal(c, "week 2", week)
	})
}

func testRevenuePanelExport(t *testing.T) {
	withRevenuePanel(t, func(c *fixture.Case, panel *pages.RevenuePanel) {
		step(c, panel.ApplyFilters(pages.Filters{Department: filterDepartment(), Year: "2025"}), "apply filters")
		step(c, panel.Export(), "click export")
	})
}
