package fixture

import (
	"flag"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func names(mods []Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Name
	}
	return out
}

func noop(*testing.T) {}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"admin_revenue_panel", "reports", "admin_login", "admin_dashboard", "employees"} {
		r.MustRegister(name, noop)
	}

	assert.Equal(t, []string{"admin_revenue_panel", "reports", "admin_login", "admin_dashboard", "employees"}, names(r.Ordered()))

	require.NoError(t, r.SetPriority([]string{"admin_login", "admin_dashboard", "admin_revenue_panel"}))
	assert.Equal(t, []string{"admin_login", "admin_dashboard", "admin_revenue_panel", "reports", "employees"}, names(r.Ordered()))

	require.NoError(t, r.SetPriority([]string{"admin_login", "admin_*"}))
	assert.Equal(t, []string{"admin_login", "admin_revenue_panel", "admin_dashboard", "reports", "employees"}, names(r.Ordered()))

	require.NoError(t, r.SetFilter([]string{"admin_*"}))
	assert.Equal(t, []string{"admin_login", "admin_revenue_panel", "admin_dashboard"}, names(r.Ordered()))

	require.NoError(t, r.SetFilter(SplitPatterns(" reports , ,employees")))
	assert.Equal(t, []string{"reports", "employees"}, names(r.Ordered()))
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("admin_login", noop))
	assert.Error(t, r.Register("admin_login", noop))
	assert.Panics(t, func() { r.MustRegister("admin_login", noop) })

	assert.Error(t, r.SetPriority([]string{"admin_[login"}))
	assert.Error(t, r.SetFilter([]string{"{unclosed"}))
}

// Priority modules come first in pattern order, the rest keep registration
// order, and nothing is lost or duplicated.
func TestRegistryOrderProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 8).Draw(rt, "count")
		all := make([]string, count)
		for i := range all {
			all[i] = fmt.Sprintf("module_%d", i)
		}
		registered := rapid.Permutation(all).Draw(rt, "registered")
		priority := rapid.SliceOfDistinct(rapid.SampledFrom(append(all, "missing")), func(s string) string { return s }).Draw(rt, "priority")
		if count == 0 {
			priority = nil
		}

		r := NewRegistry()
		for _, name := range registered {
			r.MustRegister(name, noop)
		}
		if err := r.SetPriority(priority); err != nil {
			rt.Fatalf("priority: %v", err)
		}

		var want []string
		seen := map[string]bool{}
		for _, p := range priority {
			if p != "missing" {
				want = append(want, p)
				seen[p] = true
			}
		}
		for _, name := range registered {
			if !seen[name] {
				want = append(want, name)
			}
		}

		got := names(r.Ordered())
		if fmt.Sprint(got) != fmt.Sprint(want) {
			rt.Fatalf("order %v, want %v", got, want)
		}
	})
}

func TestRunAll(t *testing.T) {
	r := NewRegistry()
	var ran []string
	r.MustRegister("second", func(t *testing.T) { ran = append(ran, t.Name()) })
	r.MustRegister("first", func(t *testing.T) { ran = append(ran, t.Name()) })
	require.NoError(t, r.SetPriority([]string{"first"}))

	r.RunAll(t)

	assert.Equal(t, []string{"TestRunAll/first", "TestRunAll/second"}, ran)
}

func TestBindFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOpen *bool
		modules  []string
	}{
		{name: "defaults", args: nil},
		{name: "auto open", args: []string{"-auto-open-report"}, wantOpen: boolPtr(true)},
		{name: "explicit false", args: []string{"-auto-open-report=false"}, wantOpen: boolPtr(false)},
		{name: "modules", args: []string{"-modules", "admin_login,admin_dash*"}, modules: []string{"admin_login", "admin_dash*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("suite", flag.ContinueOnError)
			f := BindFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			assert.Equal(t, tt.wantOpen, f.AutoOpenReport)
			assert.Equal(t, tt.modules, f.ModulePatterns())
			assert.Equal(t, "testdata/config.yaml", f.Config)
		})
	}
}

func boolPtr(b bool) *bool { return &b }
