package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/trackora/pkg/console"
)

const recentResults = 8

// eventMsg carries one go test event into the TUI.
type eventMsg Event

// runDoneMsg tells the TUI that go test has exited.
type runDoneMsg struct{}

// progressModel is the live view shown while the suite runs.
type progressModel struct {
	spinner   spinner.Model
	bar       progress.Model
	tally     *Tally
	recent    []string
	status    string
	started   time.Time
	done      bool
	interrupt func()
}

func newProgressModel(tally *Tally, interrupt func()) *progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(console.SalmonPink)

	bar := progress.New(
		progress.WithGradient(string(console.CoralPink), string(console.MintGreen)),
		progress.WithoutPercentage(),
		progress.WithWidth(40),
	)

	return &progressModel{
		spinner:   s,
		bar:       bar,
		tally:     tally,
		started:   time.Now(),
		interrupt: interrupt,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.status = "interrupting..."
			if m.interrupt != nil {
				m.interrupt()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = clamp(msg.Width-20, 10, 60)
		return m, nil

	case eventMsg:
		if res, ok := m.tally.Apply(Event(msg)); ok {
			m.recent = append(m.recent, resultLine(res))
			if len(m.recent) > recentResults {
				m.recent = m.recent[len(m.recent)-recentResults:]
			}
		} else if msg.Test == "" && msg.Action == ActionOutput {
			if line := strings.TrimSpace(msg.Output); line != "" {
				m.status = line
			}
		}
		return m, nil

	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *progressModel) View() string {
	if m.done {
		return strings.Join(m.recent, "\n") + "\n"
	}

	var b strings.Builder
	b.WriteString(console.HeaderStyle.Render("Trackora UI tests") + "\n\n")
	for _, line := range m.recent {
		b.WriteString(line + "\n")
	}
	if len(m.recent) > 0 {
		b.WriteString("\n")
	}

	running := m.tally.Running()
	current := "starting"
	if len(running) > 0 {
		current = running[0]
	}
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), current)

	ratio := 0.0
	if seen := m.tally.Seen(); seen > 0 {
		ratio = float64(m.tally.Finished()) / float64(seen)
	}
	fmt.Fprintf(&b, "%s  %s\n", m.bar.ViewAs(ratio), counts(m.tally))
	fmt.Fprintf(&b, "%s\n", console.MutedStyle.Render(time.Since(m.started).Round(time.Second).String()+"  "+m.status))
	return b.String()
}

// plainPrinter writes one line per finished test, for pipes and CI logs.
type plainPrinter struct {
	w     io.Writer
	tally *Tally
}

func (p *plainPrinter) handle(e Event) {
	res, ok := p.tally.Apply(e)
	if !ok {
		return
	}
	fmt.Fprintln(p.w, resultLine(res))
	if res.Action == ActionFail {
		for _, line := range res.Output {
			fmt.Fprintln(p.w, console.MutedStyle.Render("    "+strings.TrimSpace(line)))
		}
	}
}

func resultLine(res Result) string {
	var mark string
	switch res.Action {
	case ActionPass:
		mark = console.SuccessStyle.Render("✓")
	case ActionFail:
		mark = console.ErrorStyle.Render("✗")
	default:
		mark = console.MutedStyle.Render("-")
	}
	return fmt.Sprintf("  %s %s %s", mark, res.Test, console.MutedStyle.Render("("+res.Elapsed.Round(10*time.Millisecond).String()+")"))
}

func counts(t *Tally) string {
	return fmt.Sprintf("%s passed  %s failed  %d skipped",
		console.SuccessStyle.Render(fmt.Sprint(t.Passed)),
		console.ErrorStyle.Render(fmt.Sprint(t.Failed)),
		t.Skipped)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
