package output

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

type sprintf func(format string, a ...interface{}) string

// Colors holds the color functions for different output types
type Colors struct {
	Time      sprintf
	Delay     sprintf
	DelayHigh sprintf
	OnTime    sprintf
	Line      sprintf
	Platform  sprintf
	Canceled  sprintf
	Via       sprintf
	Header    sprintf
	Muted     sprintf
	Current   sprintf // the current station marker
	Recent    sprintf // recently selected stations
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorNever:
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		plain := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return fmt.Sprintf(format, a...)
		}
		return &Colors{
			Time: plain, Delay: plain, DelayHigh: plain, OnTime: plain,
			Line: plain, Platform: plain, Canceled: plain, Via: plain,
			Header: plain, Muted: plain, Current: plain, Recent: plain,
		}
	}

	return &Colors{
		Time:      color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Delay:     color.New(color.FgYellow).SprintfFunc(),
		DelayHigh: color.New(color.FgRed, color.Bold).SprintfFunc(),
		OnTime:    color.New(color.FgGreen).SprintfFunc(),
		Line:      color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Platform:  color.New(color.FgMagenta).SprintfFunc(),
		Canceled:  color.New(color.FgRed, color.Bold).SprintfFunc(),
		Via:       color.New(color.FgHiBlack).SprintfFunc(),
		Header:    color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Muted:     color.New(color.FgHiBlack).SprintfFunc(),
		Current:   color.New(color.FgGreen, color.Bold).SprintfFunc(),
		Recent:    color.New(color.FgBlue).SprintfFunc(),
	}
}

// FormatDelay formats a delay value with appropriate color (fixed 4-char width)
func (c *Colors) FormatDelay(delay int) string {
	if delay == 0 {
		return "    "
	}
	if delay > 0 {
		if delay >= 10 {
			return c.DelayHigh("%+4d", delay)
		}
		return c.Delay("%+4d", delay)
	}
	return c.OnTime("%4d", delay)
}

// ParseColorMode parses a --color flag value
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}
