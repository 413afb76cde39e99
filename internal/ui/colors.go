package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/quantmind-br/jlaunch/internal/core"
)

// Color scheme for jlaunch
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
	Bullet    = color.HiBlackString("•")

	// Runtime source colors
	SourceBundled = color.New(color.FgMagenta)
	SourceEnv     = color.New(color.FgBlue)
	SourceSystem  = color.New(color.FgYellow)
)

// InitColors initializes color settings based on environment
func InitColors() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// FprintSuccess writes a success message to w
func FprintSuccess(w io.Writer, format string, args ...interface{}) {
	Success.Fprintf(w, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// FprintError writes an error message to w
func FprintError(w io.Writer, format string, args ...interface{}) {
	Error.Fprintf(w, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// FprintWarning writes a single warning line to w
func FprintWarning(w io.Writer, format string, args ...interface{}) {
	Warning.Fprintf(w, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// FprintKeyValue writes a key-value pair to w
func FprintKeyValue(w io.Writer, key, value string) {
	Bold.Fprintf(w, "%s: ", key)
	fmt.Fprintln(w, value)
}

// FprintHeader writes a section header to w
func FprintHeader(w io.Writer, text string) {
	fmt.Fprintln(w)
	Bold.Fprintln(w, text)
	Muted.Fprintln(w, "────────────────────────────────────────")
}

// FprintSubheader writes a subsection header to w
func FprintSubheader(w io.Writer, text string) {
	fmt.Fprintln(w)
	Highlight.Fprintln(w, text)
}

// FprintList writes a bulleted list to w
func FprintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", Bullet, item)
	}
}

// ColorizeSource returns a colored runtime source name
func ColorizeSource(source core.Source) string {
	switch source {
	case core.SourceOverride, core.SourceBundled:
		return SourceBundled.Sprint(string(source))
	case core.SourceJavaHome, core.SourceJREHome:
		return SourceEnv.Sprint(string(source))
	case core.SourcePath, core.SourceVendor, core.SourceWellKnown:
		return SourceSystem.Sprint(string(source))
	default:
		return string(source)
	}
}

// Status returns a check or cross mark
func Status(ok bool) string {
	if ok {
		return CheckMark
	}
	return CrossMark
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output
func EnableColors() {
	color.NoColor = false
}

// AreColorsEnabled returns whether colors are currently enabled
func AreColorsEnabled() bool {
	return !color.NoColor
}
