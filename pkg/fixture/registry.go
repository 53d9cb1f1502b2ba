package fixture

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gobwas/glob"
)

// Module is a named group of tests run as one subtest.
type Module struct {
	Name string
	Run  func(t *testing.T)
}

// Registry orders and filters modules. Modules matching the priority
// patterns run first, in pattern order; the rest follow in registration
// order.
type Registry struct {
	mu       sync.Mutex
	modules  []Module
	priority []glob.Glob
	filter   []glob.Glob
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a module. Registering a name twice is an error.
func (r *Registry) Register(name string, run func(t *testing.T)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.modules {
		if m.Name == name {
			return fmt.Errorf("module %q already registered", name)
		}
	}
	r.modules = append(r.modules, Module{Name: name, Run: run})
	return nil
}

// MustRegister is Register for package init functions.
func (r *Registry) MustRegister(name string, run func(t *testing.T)) {
	if err := r.Register(name, run); err != nil {
		panic(err)
	}
}

// SetPriority sets the glob patterns whose modules run first.
func (r *Registry) SetPriority(patterns []string) error {
	compiled, err := compileAll(patterns)
	if err != nil {
		return fmt.Errorf("module order: %w", err)
	}
	r.mu.Lock()
	r.priority = compiled
	r.mu.Unlock()
	return nil
}

// SetFilter restricts the run to modules matching any of patterns. No
// patterns means every module runs.
func (r *Registry) SetFilter(patterns []string) error {
	compiled, err := compileAll(patterns)
	if err != nil {
		return fmt.Errorf("module filter: %w", err)
	}
	r.mu.Lock()
	r.filter = compiled
	r.mu.Unlock()
	return nil
}

// Ordered returns the modules to run, in run order.
func (r *Registry) Ordered() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	var selected []Module
	for _, m := range r.modules {
		if len(r.filter) == 0 || matchAny(r.filter, m.Name) {
			selected = append(selected, m)
		}
	}

	taken := make([]bool, len(selected))
	ordered := make([]Module, 0, len(selected))
	for _, g := range r.priority {
		for i, m := range selected {
			if !taken[i] && g.Match(m.Name) {
				taken[i] = true
				ordered = append(ordered, m)
			}
		}
	}
	for i, m := range selected {
		if !taken[i] {
			ordered = append(ordered, m)
		}
	}
	return ordered
}

// RunAll runs each selected module as a subtest of t, in order.
func (r *Registry) RunAll(t *testing.T) {
	t.Helper()
	modules := r.Ordered()
	if len(modules) == 0 {
		t.Skip("no modules selected")
	}
	for _, m := range modules {
		t.Run(m.Name, m.Run)
	}
}

// SplitPatterns splits a comma separated pattern list, dropping blanks.
func SplitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
