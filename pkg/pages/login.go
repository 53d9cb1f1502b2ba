package pages

import (
	"fmt"
	"strings"

	"github.com/entrhq/trackora/pkg/wait"
)

// Login page locator names.
const (
	LoginUsername     = "username"
	LoginPassword     = "password"
	LoginButton       = "login_button"
	LoginErrorMessage = "error_message"
)

// InvalidCredentialsMessage is the toast shown for a rejected login.
const InvalidCredentialsMessage = "Invalid email or password"

// LoginLocators locate the login form.
var LoginLocators = Table{
	LoginUsername:     wait.ID("email"),
	LoginPassword:     wait.ID("password"),
	LoginButton:       wait.XPath("//button[@type='submit']"),
	LoginErrorMessage: wait.XPath("//div[@class='Toastify__toast-body']"),
}

// Login is the sign-in page.
type Login struct {
	*Driver
}

// NewLogin wraps session as the login page.
func NewLogin(session Session, opts ...Option) *Login {
	return &Login{Driver: NewDriver(session, LoginLocators, opts...)}
}

// IsLoaded reports whether the login form is shown.
func (p *Login) IsLoaded() bool {
	return p.IsVisible(p.L(LoginUsername)) && p.IsVisible(p.L(LoginPassword))
}

// EnterUsername types the username.
func (p *Login) EnterUsername(username string) error {
	return p.Fill(p.L(LoginUsername), username)
}

// EnterPassword types the password.
func (p *Login) EnterPassword(password string) error {
	return p.Fill(p.L(LoginPassword), password)
}

// Submit clicks the sign-in button.
func (p *Login) Submit() error {
	return p.Click(p.L(LoginButton))
}

// Login fills the form, submits it and waits for the next page to load. It
// does not decide whether the login succeeded.
func (p *Login) Login(username, password string) error {
	p.Logger().Infof("logging in as %s", username)
	if err := p.EnterUsername(username); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := p.EnterPassword(password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := p.Submit(); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return p.WaitForLoad()
}

// ErrorMessage returns the error toast text, if one is shown.
func (p *Login) ErrorMessage() (string, bool) {
	loc := p.L(LoginErrorMessage)
	if !p.IsVisible(loc) {
		return "", false
	}
	text, err := p.Text(loc)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// IsErrorDisplayed reports whether an error toast is shown.
func (p *Login) IsErrorDisplayed() bool {
	return p.IsVisible(p.L(LoginErrorMessage))
}

// IsInvalidCredentialsErrorDisplayed reports whether the toast rejects the
// credentials.
func (p *Login) IsInvalidCredentialsErrorDisplayed() bool {
	msg, ok := p.ErrorMessage()
	return ok && strings.Contains(msg, InvalidCredentialsMessage)
}
