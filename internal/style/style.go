// Package style provides terminal styling for pcalc output using Lipgloss.
package style

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	// Success style for computed values (green)
	Success = lipgloss.NewStyle().Foreground(colorPass).Bold(true)

	// Warning style for cycles and other non-fatal findings (yellow)
	Warning = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)

	// Error style for failed formulas (red)
	Error = lipgloss.NewStyle().Foreground(colorFail).Bold(true)

	// Info style for ids and variable names (blue)
	Info = lipgloss.NewStyle().Foreground(colorAccent)

	// Dim style for formula text and heights (gray)
	Dim = lipgloss.NewStyle().Foreground(colorMuted)

	Bold = lipgloss.NewStyle().Bold(true)
)

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor reports whether output to f should carry ANSI colors.
// NO_COLOR disables color and CLICOLOR_FORCE enables it regardless of f.
func ShouldUseColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	return IsTerminal(f)
}

// Init picks the color profile for output to f.
func Init(f *os.File) {
	if ShouldUseColor(f) {
		lipgloss.SetColorProfile(termenv.TrueColor)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// PrintWarning writes a styled warning line to w.
func PrintWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", Warning.Render("warning:"), fmt.Sprintf(format, args...))
}

// PrintError writes a styled error line to w.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", Error.Render("error:"), err)
}
