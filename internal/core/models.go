package core

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Width is the pointer width encoded in a native library header.
// Values are bit flags so that a universal binary can report both.
type Width int

const (
	WidthNone Width = 0
	Width32   Width = 32
	Width64   Width = 64
)

// HostWidth returns the pointer width of the running process
func HostWidth() Width {
	return Width(strconv.IntSize)
}

// Accepts reports whether a library of width w can be loaded by a host of width host
func (w Width) Accepts(host Width) bool {
	return w&host != 0
}

func (w Width) String() string {
	switch w {
	case WidthNone:
		return "none"
	case Width32:
		return "32-bit"
	case Width64:
		return "64-bit"
	case Width32 | Width64:
		return "universal"
	default:
		return fmt.Sprintf("width(%d)", int(w))
	}
}

// Source identifies the strategy that produced a RuntimeCandidate
type Source string

const (
	SourceOverride  Source = "override"
	SourceBundled   Source = "bundled"
	SourceJavaHome  Source = "JAVA_HOME"
	SourceJREHome   Source = "JRE_HOME"
	SourcePath      Source = "PATH"
	SourceVendor    Source = "java_home"
	SourceWellKnown Source = "well-known"
)

// RuntimeCandidate is a validated JVM shared library and the home it belongs to
type RuntimeCandidate struct {
	Root        string    // search root the candidate was found under
	Home        string    // JRE home directory
	LibraryPath string    // library path relative to Home
	Resolved    string    // absolute path of the library
	ModTime     time.Time // modification time of the library
	Width       Width
	Source      Source
}

// JavaHome returns the install root, stripping a trailing jre component
func (c *RuntimeCandidate) JavaHome() string {
	if c.IsNestedJRE() {
		return filepath.Dir(c.Home)
	}
	return c.Home
}

// IsNestedJRE reports whether Home is the jre/ directory of a JDK
func (c *RuntimeCandidate) IsNestedJRE() bool {
	return filepath.Base(c.Home) == "jre"
}

func (c *RuntimeCandidate) String() string {
	return fmt.Sprintf("%s (%s, %s)", c.Resolved, c.Width, c.Source)
}

// ResultKind tags a LaunchResult
type ResultKind int

const (
	ResultStarted ResultKind = iota
	ResultOutOfMemory
	ResultLoadFailed
	ResultEntryPointMissing
	ResultCreateFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultStarted:
		return "started"
	case ResultOutOfMemory:
		return "out-of-memory"
	case ResultLoadFailed:
		return "load-failed"
	case ResultEntryPointMissing:
		return "entry-point-missing"
	case ResultCreateFailed:
		return "create-failed"
	default:
		return "unknown"
	}
}

// LaunchResult is the outcome of one JVM creation attempt
type LaunchResult struct {
	Kind ResultKind
	// Reason carries the underlying error for LoadFailed and EntryPointMissing
	Reason error
	// ConfigError is set on LoadFailed when the JRE home itself is missing
	ConfigError bool
	// Code is the raw creation status for CreateFailed
	Code int
}

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneral       = 1
	ExitInvalidArgs   = 2
	ExitConfiguration = 3
	ExitOutOfMemory   = 4
	ExitLoadFailed    = 5
	ExitReExecFailed  = 6
	ExitEntryPoint    = 7
	ExitJavaNotFound  = 8
	ExitInterrupted   = 130
)

// JoinList joins entries with the platform list separator, skipping empty ones
func JoinList(entries []string, sep string) string {
	var b strings.Builder
	for _, e := range entries {
		if e == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(e)
	}
	return b.String()
}
