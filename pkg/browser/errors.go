package browser

import (
	"errors"
	"fmt"
)

var errNotInitialized = errors.New("launcher not initialized")

// UnsupportedBrowserError is returned for a browser name outside the
// supported set. It is raised before anything is launched.
type UnsupportedBrowserError struct {
	Name string
}

func (e *UnsupportedBrowserError) Error() string {
	return fmt.Sprintf("browser %q not supported (use chrome or firefox)", e.Name)
}

// ProvisionError reports a failure while bringing a session up. Stage is one
// of initialize, launch, context, page or navigate.
type ProvisionError struct {
	Stage string
	Kind  Kind
	Err   error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("failed to provision %s session (%s): %v", e.Kind, e.Stage, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}
