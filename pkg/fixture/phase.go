package fixture

import "fmt"

// Phase is a step in a test case's lifecycle.
type Phase string

const (
	PhaseNotStarted  Phase = "NOT_STARTED"
	PhaseSetup       Phase = "SETUP"
	PhaseRunning     Phase = "RUNNING"
	PhasePassed      Phase = "PASSED"
	PhaseFailed      Phase = "FAILED"
	PhaseSetupFailed Phase = "SETUP_FAILED"
	PhaseTeardown    Phase = "TEARDOWN"
	PhaseDone        Phase = "DONE"
)

var transitions = map[Phase][]Phase{
	PhaseNotStarted:  {PhaseSetup},
	PhaseSetup:       {PhaseRunning, PhaseSetupFailed},
	PhaseRunning:     {PhasePassed, PhaseFailed},
	PhasePassed:      {PhaseTeardown},
	PhaseFailed:      {PhaseTeardown},
	PhaseSetupFailed: {PhaseTeardown},
	PhaseTeardown:    {PhaseDone},
}

// CanTransition reports whether a case may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError reports an illegal phase change.
type TransitionError struct {
	From Phase
	To   Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal phase transition %s -> %s", e.From, e.To)
}

// Terminal reports whether p ends a case's run before teardown.
func (p Phase) Terminal() bool {
	return p == PhasePassed || p == PhaseFailed || p == PhaseSetupFailed
}
