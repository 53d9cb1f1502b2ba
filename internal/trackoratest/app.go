// Package trackoratest serves a small stand-in for the Trackora web app so
// browser-backed tests can run without a deployed environment. It renders
// the same markup the real app exposes to the locators in pkg/pages:
// login form and toast, dashboard metric cards with a loading overlay, the
// post-login welcome alert, and the revenue panel's custom dropdowns.
package trackoratest

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Seeded accounts.
const (
	AdminEmail       = "admin@trackora.test"
	AdminPassword    = "p1"
	ManagerEmail     = "manager@trackora.test"
	ManagerPassword  = "p2"
	EmployeeEmail    = "employee@trackora.test"
	EmployeePassword = "p3"

	WelcomeMessage      = "Login successful"
	InvalidLoginMessage = "Invalid email or password"

	sessionCookie = "trackora_session"
)

// Departments listed in the revenue panel department filter.
var Departments = []string{"Java", "Python", "QA", "DevOps"}

// App is a running stand-in server.
type App struct {
	*httptest.Server

	// SpinnerDelay is how long the dashboard loading overlay stays up.
	SpinnerDelay time.Duration

	// WelcomeAlert controls whether a successful login raises an alert.
	WelcomeAlert bool

	mu     sync.Mutex
	users  map[string]string
	logins int
}

// Option configures an App.
type Option func(*App)

// WithSpinnerDelay sets how long the dashboard overlay blocks the page.
func WithSpinnerDelay(d time.Duration) Option {
	return func(a *App) { a.SpinnerDelay = d }
}

// WithoutWelcomeAlert disables the post-login alert.
func WithoutWelcomeAlert() Option {
	return func(a *App) { a.WelcomeAlert = false }
}

// NewServer starts the app and closes it when t finishes.
func NewServer(t testing.TB, opts ...Option) *App {
	t.Helper()
	a := New(opts...)
	t.Cleanup(a.Close)
	return a
}

// New starts the app. The caller must Close it.
func New(opts ...Option) *App {
	a := &App{
		SpinnerDelay: 300 * time.Millisecond,
		WelcomeAlert: true,
		users: map[string]string{
			AdminEmail:    AdminPassword,
			ManagerEmail:  ManagerPassword,
			EmployeeEmail: EmployeePassword,
		},
	}
	for _, opt := range opts {
		opt(a)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", a.handleRoot)
	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/dashboard", a.requireLogin(a.handleDashboard))
	mux.HandleFunc("/RevenuePanel", a.requireLogin(a.handleRevenuePanel))
	mux.HandleFunc("/employees", a.requireLogin(a.handleSection("Employees")))
	mux.HandleFunc("/timesheet", a.requireLogin(a.handleSection("Timesheet")))
	mux.HandleFunc("/project", a.requireLogin(a.handleSection("Projects")))

	a.Server = httptest.NewServer(mux)
	return a
}

// Logins returns the number of successful logins served.
func (a *App) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

func (a *App) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := a.user(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		email, password := r.PostFormValue("email"), r.PostFormValue("password")

		a.mu.Lock()
		want, ok := a.users[email]
		if ok && want == password {
			a.logins++
		}
		a.mu.Unlock()

		if !ok || want != password {
			http.Redirect(w, r, "/login?error=1", http.StatusSeeOther)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: email, Path: "/", HttpOnly: true})
		http.Redirect(w, r, "/dashboard?welcome=1", http.StatusSeeOther)
		return
	}

	render(w, loginTemplate, map[string]interface{}{
		"Error": r.URL.Query().Get("error") != "",
		"Msg":   InvalidLoginMessage,
	})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	render(w, dashboardTemplate, map[string]interface{}{
		"Nav":       "dashboard",
		"Welcome":   a.WelcomeAlert && r.URL.Query().Get("welcome") != "",
		"Message":   WelcomeMessage,
		"SpinnerMS": a.SpinnerDelay.Milliseconds(),
	})
}

func (a *App) handleRevenuePanel(w http.ResponseWriter, r *http.Request) {
	render(w, revenueTemplate, map[string]interface{}{
		"Nav":         "revenue",
		"Departments": Departments,
		"Weeks":       []int{1, 2, 3, 4, 5},
	})
}

func (a *App) handleSection(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, sectionTemplate, map[string]interface{}{"Nav": "section", "Title": title})
	}
}

func (a *App) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.user(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

func (a *App) user(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.users[c.Value]
	return c.Value, ok
}

func render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, fmt.Sprintf("render: %v", err), http.StatusInternalServerError)
	}
}
