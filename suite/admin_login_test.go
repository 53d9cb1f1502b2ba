package suite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trackora/pkg/pages"
	"github.com/entrhq/trackora/pkg/testdata"
)

func init() {
	modules.MustRegister("admin_login", func(t *testing.T) {
		t.Run("success", testAdminLoginSuccess)
		t.Run("invalid credentials", testAdminLoginInvalidCredentials)
	})
}

func testAdminLoginSuccess(t *testing.T) {
	c := harness.Start(t, "admin_login")
	c.Run(func() {
		session := c.Session()
		login := pages.NewLogin(session, c.PageOptions()...)

		require.True(c, login.IsLoaded(), "login page should be loaded")

		var admin testdata.Lookup
		if creds := harness.Credentials(); creds != nil {
			admin = creds.Lookup(testdata.DefaultRole)
		}
		require.True(c, admin.Found(), "admin credentials should be defined")

		step(c, login.Login(admin.Credential.Username, admin.Credential.Password), "login as admin")

		if msg, ok := session.AwaitDialog(settings.AlertGrace.D()); ok {
			c.Logf("login popup alert displayed: %s", msg)
		} else {
			c.Logf("no login popup alert displayed")
		}

		dashboard := pages.NewDashboard(session, c.PageOptions()...)
		assert.True(c, dashboard.IsLoaded(), "dashboard should load after admin login")
		assert.Contains(c, strings.ToLower(session.URL()), "dashboard", "URL should contain 'dashboard' after login")
	})
}

func testAdminLoginInvalidCredentials(t *testing.T) {
	c := harness.Start(t, "admin_login")
	c.Run(func() {
		login := pages.NewLogin(c.Session(), c.PageOptions()...)

		require.True(c, login.IsLoaded(), "login page should be loaded")

		step(c, login.Login(testdata.UniqueEmail("invalid_user"), "invalid_pass"), "submit invalid credentials")

		require.True(c, login.IsErrorDisplayed(), "error message should be displayed with invalid credentials")
		msg, _ := login.ErrorMessage()
		c.Logf("error message displayed: %s", msg)
		assert.True(c, login.IsInvalidCredentialsErrorDisplayed(), "expected %q error message, got %q", pages.InvalidCredentialsMessage, msg)
	})
}
