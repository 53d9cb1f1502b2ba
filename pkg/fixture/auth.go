package fixture

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/testdata"
)

// DefaultAlertGrace is how long to wait for the post-login alert.
const DefaultAlertGrace = 5 * time.Second

// ErrNoCredentials is returned when neither the requested role nor the
// default role has credentials.
var ErrNoCredentials = errors.New("no credentials available")

// AuthError reports a login that did not reach the dashboard.
type AuthError struct {
	Username string
	// Message is the error shown by the login page, if any.
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("login as %s rejected: %s", e.Username, e.Message)
	}
	return fmt.Sprintf("login as %s did not reach the dashboard", e.Username)
}

// Dialogs is a session that can report JavaScript dialogs.
type Dialogs interface {
	pages.Session
	AwaitDialog(grace time.Duration) (string, bool)
}

// AuthContext is a session that has logged in.
type AuthContext struct {
	Session   Dialogs
	Dashboard *pages.Dashboard
	// Lookup tells which role's credentials were used.
	Lookup testdata.Lookup
	// Alert is the text of the dismissed post-login alert, empty when none
	// appeared.
	Alert string
}

// Authenticate logs session in with the credentials for role, falling back
// to the default role when role is not defined.
func Authenticate(session Dialogs, creds *testdata.Credentials, role string, grace time.Duration, opts ...pages.Option) (*AuthContext, error) {
	if creds == nil {
		return nil, fmt.Errorf("authenticate %q: %w", role, ErrNoCredentials)
	}
	lookup := creds.Lookup(role)
	if !lookup.Found() {
		return nil, fmt.Errorf("authenticate %q: %w", role, ErrNoCredentials)
	}

	ctx, err := AuthenticateWith(session, lookup.Credential, grace, opts...)
	if err != nil {
		return nil, fmt.Errorf("authenticate %q: %w", role, err)
	}
	ctx.Lookup = lookup
	return ctx, nil
}

// AuthenticateWith logs session in with explicit credentials. After the
// login it waits up to grace for an alert; the session accepts dialogs as
// they open, so a missing alert is not an error.
func AuthenticateWith(session Dialogs, cred testdata.Credential, grace time.Duration, opts ...pages.Option) (*AuthContext, error) {
	if grace < 0 {
		grace = 0
	}

	login := pages.NewLogin(session, opts...)
	if err := login.Login(cred.Username, cred.Password); err != nil {
		return nil, err
	}

	alert, ok := session.AwaitDialog(grace)
	if ok {
		login.Logger().Infof("accepted post-login alert: %s", alert)
	} else {
		login.Logger().Debugf("no post-login alert within %s", grace)
	}

	dashboard := pages.NewDashboard(session, opts...)
	if !dashboard.IsLoaded() {
		msg, _ := login.ErrorMessage()
		return nil, &AuthError{Username: cred.Username, Message: msg}
	}

	return &AuthContext{
		Session:   session,
		Dashboard: dashboard,
		Lookup:    testdata.Lookup{Credential: cred, Match: testdata.MatchExact},
		Alert:     alert,
	}, nil
}
