package launch

import (
	"context"
	"errors"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/libpath"
)

var (
	// ErrOutOfMemory is returned when the heap cannot be reduced any further
	ErrOutOfMemory = errors.New("out of memory")

	// ErrEntryPoint is returned when the VM started but the entry class or
	// its main method is missing
	ErrEntryPoint = errors.New("application entry point not found")

	// ErrNoJava is returned when no external java executable can be run
	ErrNoJava = errors.New("no java executable found")
)

// ExitCode maps an error returned by Run to a process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return core.ExitSuccess
	case errors.Is(err, context.Canceled):
		return core.ExitInterrupted
	case errors.Is(err, jre.ErrJavaHomeInvalid):
		return core.ExitConfiguration
	case errors.Is(err, ErrOutOfMemory):
		return core.ExitOutOfMemory
	case errors.Is(err, libpath.ErrReExec):
		return core.ExitReExecFailed
	case errors.Is(err, ErrEntryPoint):
		return core.ExitEntryPoint
	case errors.Is(err, ErrNoJava):
		return core.ExitJavaNotFound
	default:
		return core.ExitGeneral
	}
}
