package output

import (
	"regexp"
	"testing"

	"github.com/fatih/color"

	"github.com/mobil-koeln/station-cli/internal/testutil"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// noColor disables fatih/color for the duration of a test
func noColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"always", ColorAlways, false},
		{"never", ColorNever, false},
		{"auto", ColorAuto, false},
		{"", ColorAuto, false},
		{"rainbow", ColorAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColorMode(tt.input)
			testutil.AssertEqual(t, got, tt.want)
			testutil.AssertEqual(t, err != nil, tt.wantErr)
		})
	}
}

func TestNewColors_NeverMode(t *testing.T) {
	noColor(t)
	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Time("15:04"), "15:04")
	testutil.AssertEqual(t, c.Line("ICE %d", 123), "ICE 123")
	testutil.AssertEqual(t, c.Platform("Pl.%s", "7"), "Pl.7")
	testutil.AssertEqual(t, c.Current("*"), "*")
	testutil.AssertEqual(t, c.Recent("~"), "~")
	testutil.AssertEqual(t, c.Canceled("%s [CANCELED]", "Mannheim Hbf"), "Mannheim Hbf [CANCELED]")
}

func TestNewColors_AlwaysMode(t *testing.T) {
	old := color.NoColor
	defer func() { color.NoColor = old }()

	c := NewColors(ColorAlways)
	for _, s := range []string{c.Time("15:04"), c.DelayHigh("+12"), c.Current("*")} {
		testutil.AssertContains(t, s, "\033[")
	}
	testutil.AssertEqual(t, stripANSI(c.Line("ICE 123")), "ICE 123")
}

func TestFormatDelay(t *testing.T) {
	noColor(t)
	c := NewColors(ColorNever)

	tests := []struct {
		delay int
		want  string
	}{
		{0, "    "},
		{1, "  +1"},
		{5, "  +5"},
		{12, " +12"},
		{123, "+123"},
		{-3, "  -3"},
	}

	for _, tt := range tests {
		got := c.FormatDelay(tt.delay)
		testutil.AssertEqual(t, got, tt.want)
		testutil.AssertEqual(t, len(got), 4)
	}
}

func TestFormatDelay_WithColor(t *testing.T) {
	old := color.NoColor
	defer func() { color.NoColor = old }()

	c := NewColors(ColorAlways)
	testutil.AssertEqual(t, c.FormatDelay(0), "    ")
	testutil.AssertEqual(t, stripANSI(c.FormatDelay(5)), "  +5")
	testutil.AssertEqual(t, stripANSI(c.FormatDelay(12)), " +12")
	testutil.AssertContains(t, c.FormatDelay(-3), "\033[")
}
