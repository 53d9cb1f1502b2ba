// Package main provides the trackora command, which runs the browser suite
// through go test and renders its progress.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/entrhq/trackora/pkg/browser"
	"github.com/entrhq/trackora/pkg/config"
	"github.com/entrhq/trackora/pkg/console"
	"github.com/entrhq/trackora/pkg/fixture"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Package     string
	Config      string
	Modules     string
	Run         string
	Browser     string
	BaseURL     string
	Headed      bool
	Timeout     time.Duration
	Plain       bool
	Install     bool
	ShowVersion bool

	// AutoOpen is nil unless -auto-open-report was given.
	AutoOpen *bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Printf("Trackora v%s\n", version)
		return
	}

	if cfg.Install {
		if err := install(); err != nil {
			fmt.Fprintln(os.Stderr, console.ErrorStyle.Render("✗ Error: "+err.Error()))
			os.Exit(1)
		}
		fmt.Println(console.SuccessStyle.Render("✓ Browsers installed"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, cfg)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, console.ErrorStyle.Render("✗ Error: "+err.Error()))
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

// parseFlags parses command line flags
func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet("trackora", flag.ContinueOnError)

	fs.StringVar(&cfg.Package, "pkg", "./suite", "package holding the browser suite")
	fs.StringVar(&cfg.Config, "config", "testdata/config.yaml", "run configuration, relative to the suite package")
	fs.StringVar(&cfg.Modules, "modules", "", "comma separated glob patterns selecting modules")
	fs.StringVar(&cfg.Run, "run", "", "go test -run pattern")
	fs.StringVar(&cfg.Browser, "browser", "", "browser to use: chrome or firefox (overrides the configuration)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "application URL (overrides the configuration)")
	fs.BoolVar(&cfg.Headed, "headed", false, "show the browser window")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Minute, "go test timeout")
	fs.BoolVar(&cfg.Plain, "plain", false, "print plain lines instead of the live view")
	fs.BoolVar(&cfg.Install, "install", false, "install the Playwright driver and browsers, then exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "show version and exit")
	fs.Var(fixture.OptionalBool(&cfg.AutoOpen), "auto-open-report", "open the HTML report when the run ends (overrides the saved setting)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Trackora - browser test runner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: trackora [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Run every module against the configured environment\n")
		fmt.Fprintf(os.Stderr, "  trackora\n\n")
		fmt.Fprintf(os.Stderr, "  # Run the dashboard checks in Firefox and open the report\n")
		fmt.Fprintf(os.Stderr, "  trackora -browser firefox -modules 'admin_dash*' -auto-open-report=true\n\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.Browser != "" {
		if _, err := browser.ParseKind(cfg.Browser); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}
	return cfg, nil
}

// testArgs builds the go test command line for cfg.
func testArgs(cfg *CLIConfig) []string {
	args := []string{"test", "-json", "-count=1", "-timeout", cfg.Timeout.String()}
	if cfg.Run != "" {
		args = append(args, "-run", cfg.Run)
	}
	args = append(args, cfg.Package, "-args", "-config", cfg.Config, "-console", "quiet")
	if cfg.Modules != "" {
		args = append(args, "-modules", cfg.Modules)
	}
	if cfg.AutoOpen != nil {
		args = append(args, "-auto-open-report="+strconv.FormatBool(*cfg.AutoOpen))
	}
	return args
}

// testEnv returns the environment for go test with cfg's overrides applied.
func testEnv(cfg *CLIConfig) []string {
	env := os.Environ()
	if cfg.Browser != "" {
		env = append(env, config.EnvBrowser+"="+cfg.Browser)
	}
	if cfg.BaseURL != "" {
		env = append(env, config.EnvBaseURL+"="+cfg.BaseURL)
	}
	if cfg.Headed {
		env = append(env, config.EnvHeadless+"=false")
	}
	return env
}

// run executes go test and renders its events. The returned code is go
// test's exit status.
func run(ctx context.Context, cfg *CLIConfig) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", testArgs(cfg)...)
	cmd.Env = testEnv(cfg)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 10 * time.Second

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 1, err
	}
	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("failed to start go test: %w", err)
	}

	tally := NewTally()
	interactive := !cfg.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	var (
		handle  func(Event)
		program *tea.Program
	)
	if interactive {
		program = tea.NewProgram(newProgressModel(tally, cancel), tea.WithContext(ctx))
		handle = func(e Event) { program.Send(eventMsg(e)) }
	} else {
		printer := &plainPrinter{w: os.Stdout, tally: tally}
		handle = printer.handle
		fmt.Println(console.HeaderStyle.Render("Trackora UI tests"))
	}

	var g errgroup.Group
	g.Go(func() error { return readEvents(stdout, handle) })
	g.Go(func() error {
		_, err := io.Copy(os.Stderr, stderr)
		return err
	})

	waited := make(chan error, 1)
	go func() {
		pumpErr := g.Wait()
		waitErr := cmd.Wait()
		if program != nil {
			program.Send(runDoneMsg{})
		}
		waited <- errors.Join(waitErr, pumpErr)
	}()

	if program != nil {
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			cancel()
		}
	}
	err = <-waited

	for _, line := range tally.PackageOutput {
		fmt.Println(line)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code, nil
		}
		return 1, nil
	}
	if err != nil {
		return 1, err
	}
	if !tally.OK() {
		return 1, nil
	}
	return 0, nil
}

// install downloads the Playwright driver and browsers.
func install() error {
	l := browser.NewLauncher()
	if err := l.Initialize(true); err != nil {
		return err
	}
	return l.Shutdown()
}
