package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette shared with the plain CLI output
var (
	colorBlack   = lipgloss.Color("0")
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorBlue    = lipgloss.Color("4")
	colorMagenta = lipgloss.Color("5")
	colorCyan    = lipgloss.Color("6")
	colorGray    = lipgloss.Color("8")
	colorWhite   = lipgloss.Color("15")
)

// highDelay is the delay in minutes from which a delay is shown in red
const highDelay = 10

var (
	stylePlain     = lipgloss.NewStyle()
	styleHeader    = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleLogo      = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleMuted     = lipgloss.NewStyle().Foreground(colorGray)
	styleLoading   = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)
	styleError     = lipgloss.NewStyle().Foreground(colorRed)
	styleSelected  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleStatusBar = lipgloss.NewStyle().Foreground(colorGray).Background(colorBlack)

	// board and train rows
	styleTime      = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleLine      = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	stylePlatform  = lipgloss.NewStyle().Foreground(colorMagenta)
	styleOnTime    = lipgloss.NewStyle().Foreground(colorGreen)
	styleDelay     = lipgloss.NewStyle().Foreground(colorYellow)
	styleDelayHigh = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleCanceled  = styleDelayHigh

	styleCurrentStop = lipgloss.NewStyle().Foreground(colorBlack).Background(colorRed).Bold(true)

	// recent list markers
	styleCurrentStation = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleRecent         = lipgloss.NewStyle().Foreground(colorBlue)

	styleChipCursor = lipgloss.NewStyle().Foreground(colorBlack).Background(colorCyan).Bold(true)

	stylePanelNormal  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGray)
	stylePanelFocused = stylePanelNormal.BorderForeground(colorCyan)
)

// formatDelay renders a delay in minutes right-aligned in four columns.
// Zero renders as blanks.
func formatDelay(delay int) string {
	switch {
	case delay == 0:
		return "    "
	case delay >= highDelay:
		return styleDelayHigh.Render(fmt.Sprintf("%+4d", delay))
	case delay > 0:
		return styleDelay.Render(fmt.Sprintf("%+4d", delay))
	default:
		return styleOnTime.Render(fmt.Sprintf("%4d", delay))
	}
}
