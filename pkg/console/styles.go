package console

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the console and the CLI progress view.
var (
	SalmonPink  = lipgloss.Color("#FFB3BA")
	CoralPink   = lipgloss.Color("#FFCCCB")
	MintGreen   = lipgloss.Color("#A8E6CF")
	Amber       = lipgloss.Color("#FCD34D")
	MutedGray   = lipgloss.Color("#6B7280")
	BrightWhite = lipgloss.Color("#F9FAFB")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(SalmonPink).
			Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Foreground(CoralPink)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(MintGreen).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(SalmonPink).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedGray)

	InfoStyle = lipgloss.NewStyle().
			Foreground(BrightWhite)

	// PathStyle highlights file locations the user is likely to open.
	PathStyle = lipgloss.NewStyle().
			Foreground(MintGreen).
			Underline(true)
)
