package fixture

import (
	"fmt"
	"runtime/debug"

	"github.com/entrhq/trackora/pkg/report"
)

// SetupModule is the module of entries recorded for run-level setup steps.
const SetupModule = "setup"

// RecordSetupFailure records a failure that stopped the run before any test
// started, such as an unreadable configuration, as a setup-failed entry so
// the report still says why nothing ran.
func RecordSetupFailure(run *report.Run, step string, err error) report.Entry {
	entry := report.Entry{
		Name:    step,
		Module:  SetupModule,
		Outcome: report.OutcomeSetupFailed,
		Kind:    report.KindInfrastructure,
		Started: run.Now(),
		Failures: []report.Failure{{
			Message: fmt.Sprintf("setup failed: %v", err),
			Stack:   string(debug.Stack()),
		}},
	}
	run.Recorder().Add(entry)
	run.Logger().Errorf("%s: %v", step, err)
	return entry
}
