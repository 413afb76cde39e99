// Package launch runs the launcher state machine: locate a runtime, make the
// library path effective, embed the JVM and fall back to an external java
// when embedding is not possible.
package launch

import (
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/jvm"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Session carries everything one launcher process needs. It replaces
// process-wide state so that each re-exec boundary starts from a fresh value.
type Session struct {
	Fs       afero.Fs
	Env      helpers.Environment
	Runner   helpers.CommandRunner
	Replacer helpers.ProcessReplacer
	Loader   jvm.Loader
	Platform platform.Platform
	Streams  helpers.Streams
	Log      *zerolog.Logger

	// AppDir is the application install directory
	AppDir string
	// Executable is the absolute path of the running launcher
	Executable string
	// Argv is the command line captured before option processing
	Argv []string

	// JavaHome is an explicit runtime override
	JavaHome string
	// BundledDir is the directory under AppDir holding bundled runtimes
	BundledDir string
	// MinHeapMB is the retry floor
	MinHeapMB int
	// HeapMB is the heap from configuration when no option set one
	HeapMB int
}

// NewSession returns a Session wired to the real operating system
func NewSession(log *zerolog.Logger) *Session {
	return &Session{
		Fs:       afero.NewOsFs(),
		Env:      helpers.NewOSEnvironment(),
		Runner:   helpers.NewOSCommandRunner(),
		Replacer: helpers.NewOSProcessReplacer(),
		Loader:   jvm.NewLoader(),
		Platform: platform.Current(),
		Streams:  helpers.StdStreams(),
		Log:      log,
	}
}

func (s *Session) logger() *zerolog.Logger {
	if s.Log == nil {
		nop := zerolog.Nop()
		s.Log = &nop
	}
	return s.Log
}
