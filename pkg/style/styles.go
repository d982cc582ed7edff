// Package style renders delg command output for the terminal.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	CountStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(4)
)

// Configure turns styling off when out is not a terminal or color is
// disabled, so piped output stays plain. A nil out counts as not a terminal.
func Configure(out *os.File, noColor bool) {
	if noColor || out == nil || !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		Plain()
	}
}

// Plain disables colors in both lipgloss and pterm
func Plain() {
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableStyling()
}
