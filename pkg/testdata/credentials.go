// Package testdata loads the credentials and fixture records a test run
// uses. Everything it returns is read-only after Load, so one Document can
// be shared by tests running in parallel.
package testdata

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultRole is the role used when a requested role is not defined.
const DefaultRole = "admin"

// Credential is one login.
type Credential struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Match describes how a Lookup was resolved.
type Match int

const (
	// MatchNone means neither the role nor the default role exist.
	MatchNone Match = iota
	// MatchExact means the requested role was found.
	MatchExact
	// MatchDefault means the requested role was missing and the default
	// role's credentials were substituted.
	MatchDefault
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchDefault:
		return "default"
	}
	return "none"
}

// Lookup is the result of resolving a role.
type Lookup struct {
	// Requested is the role asked for.
	Requested string
	// Role is the role whose credentials were returned.
	Role       string
	Credential Credential
	Match      Match
}

// Found reports whether any credentials were returned.
func (l Lookup) Found() bool {
	return l.Match != MatchNone
}

// Credentials maps roles to logins.
type Credentials struct {
	roles       map[string]Credential
	defaultRole string
}

// NewCredentials copies roles into an immutable table.
func NewCredentials(roles map[string]Credential) *Credentials {
	c := &Credentials{
		roles:       make(map[string]Credential, len(roles)),
		defaultRole: DefaultRole,
	}
	for role, cred := range roles {
		c.roles[role] = cred
	}
	return c
}

// Lookup resolves role, substituting the default role when role is not
// defined. The caller can tell the two apart through Match.
func (c *Credentials) Lookup(role string) Lookup {
	if cred, ok := c.roles[role]; ok {
		return Lookup{Requested: role, Role: role, Credential: cred, Match: MatchExact}
	}
	if cred, ok := c.roles[c.defaultRole]; ok {
		return Lookup{Requested: role, Role: c.defaultRole, Credential: cred, Match: MatchDefault}
	}
	return Lookup{Requested: role, Match: MatchNone}
}

// Roles returns the defined roles in sorted order.
func (c *Credentials) Roles() []string {
	roles := make([]string, 0, len(c.roles))
	for role := range c.roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Record is one fixture entry, e.g. a department to create.
type Record map[string]interface{}

// String returns the field as a string, empty when missing.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy safe to modify.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Fixtures groups named records by entity.
type Fixtures struct {
	Departments map[string]Record `yaml:"departments" json:"departments"`
	Employees   map[string]Record `yaml:"employees" json:"employees"`
	Projects    map[string]Record `yaml:"projects" json:"projects"`
}

// Document is the test data file.
type Document struct {
	Users    map[string]Credential `yaml:"users" json:"users"`
	TestData Fixtures              `yaml:"test_data" json:"test_data"`

	credentials *Credentials
}

// Load reads a test data file. JSON and YAML are both accepted.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test data: %w", err)
	}
	return Parse(data)
}

// Parse decodes a test data document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	// JSON is valid YAML, so one decoder serves both formats.
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse test data: %w", err)
	}
	if len(doc.Users) == 0 {
		return nil, fmt.Errorf("test data defines no users")
	}
	doc.credentials = NewCredentials(doc.Users)
	return &doc, nil
}

// Credentials returns the role table.
func (d *Document) Credentials() *Credentials {
	if d.credentials == nil {
		d.credentials = NewCredentials(d.Users)
	}
	return d.credentials
}

// Department returns a copy of the named department record.
func (d *Document) Department(name string) (Record, bool) {
	return lookupRecord(d.TestData.Departments, name)
}

// Employee returns a copy of the named employee record.
func (d *Document) Employee(name string) (Record, bool) {
	return lookupRecord(d.TestData.Employees, name)
}

// Project returns a copy of the named project record.
func (d *Document) Project(name string) (Record, bool) {
	return lookupRecord(d.TestData.Projects, name)
}

func lookupRecord(records map[string]Record, name string) (Record, bool) {
	r, ok := records[name]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}
