package wait

import (
	"errors"
	"fmt"
	"time"
)

// ErrIntercepted is returned (wrapped) by an Element when an action did not
// reach the element because another element received it.
var ErrIntercepted = errors.New("element interaction intercepted")

// ErrTimeout is wrapped by every wait failure.
var ErrTimeout = errors.New("wait timed out")

// NotFoundError reports that a locator did not reach a condition in time.
type NotFoundError struct {
	Locator   Locator
	Condition string
	Timeout   time.Duration
	// Err is the last transient error seen while polling, if any.
	Err error
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("element %s not %s within %s", e.Locator, e.Condition, e.Timeout)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTimeout, e.Err}
	}
	return []error{ErrTimeout}
}

// NavigationTimeoutError reports that a page never reached the ready state.
type NavigationTimeoutError struct {
	URL       string
	LastState string
	Timeout   time.Duration
	Err       error
}

func (e *NavigationTimeoutError) Error() string {
	target := "page"
	if e.URL != "" {
		target = e.URL
	}
	msg := fmt.Sprintf("%s not ready within %s (document.readyState=%q)", target, e.Timeout, e.LastState)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NavigationTimeoutError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTimeout, e.Err}
	}
	return []error{ErrTimeout}
}

// InteractionInterceptedError reports that an action stayed intercepted
// after the forced retry.
type InteractionInterceptedError struct {
	Locator Locator
	Action  string
	// Cause is the original interception; Err is the forced retry's failure.
	Cause error
	Err   error
}

func (e *InteractionInterceptedError) Error() string {
	return fmt.Sprintf("%s on %s intercepted (%v), forced retry failed: %v", e.Action, e.Locator, e.Cause, e.Err)
}

func (e *InteractionInterceptedError) Unwrap() []error {
	errs := []error{ErrIntercepted}
	for _, err := range []error{e.Cause, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
