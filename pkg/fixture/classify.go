package fixture

import (
	"errors"

	"github.com/entrhq/trackora/pkg/browser"
	"github.com/entrhq/trackora/pkg/report"
	"github.com/entrhq/trackora/pkg/wait"
)

// Classify reports whether err means the environment broke (browser,
// navigation, login, artifacts) or a check against the application failed.
// A nil error has no kind.
func Classify(err error) report.FailureKind {
	if err == nil {
		return report.KindNone
	}

	var (
		unsupported *browser.UnsupportedBrowserError
		provision   *browser.ProvisionError
		navigation  *wait.NavigationTimeoutError
		auth        *AuthError
		artifact    *report.ArtifactCaptureError
	)
	switch {
	case errors.As(err, &unsupported),
		errors.As(err, &provision),
		errors.As(err, &navigation),
		errors.As(err, &auth),
		errors.As(err, &artifact),
		errors.Is(err, ErrNoCredentials):
		return report.KindInfrastructure
	}
	return report.KindAssertion
}
