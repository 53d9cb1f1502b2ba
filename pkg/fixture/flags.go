package fixture

import (
	"flag"
	"strconv"
)

// Flags are the suite's command line flags, passed after go test's own,
// e.g. go test ./suite -args -auto-open-report -modules 'admin_*'.
type Flags struct {
	// AutoOpenReport is nil unless the flag was given, so the persisted
	// setting applies by default.
	AutoOpenReport *bool
	Config         string
	Modules        string
	ConsoleLevel   string
}

// BindFlags registers the suite flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.Var(OptionalBool(&f.AutoOpenReport), "auto-open-report", "open the HTML report when the run ends (overrides the saved setting)")
	fs.StringVar(&f.Config, "config", "testdata/config.yaml", "path to the run configuration")
	fs.StringVar(&f.Modules, "modules", "", "comma separated glob patterns selecting the modules to run")
	fs.StringVar(&f.ConsoleLevel, "console", "normal", "console verbosity: quiet, normal or verbose")
	return f
}

// ModulePatterns returns the -modules patterns.
func (f *Flags) ModulePatterns() []string {
	return SplitPatterns(f.Modules)
}

// OptionalBool returns a boolean flag value that leaves *target nil until
// the flag is given. Like a bool flag, the bare -name form means true.
func OptionalBool(target **bool) flag.Value {
	return &optionalBool{target: target}
}

type optionalBool struct {
	target **bool
}

func (b *optionalBool) String() string {
	if b.target == nil || *b.target == nil {
		return ""
	}
	return strconv.FormatBool(**b.target)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.target = &v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }
