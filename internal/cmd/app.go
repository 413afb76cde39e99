package cmd

import (
	"context"
	"fmt"

	"github.com/quantmind-br/jlaunch/internal/config"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/jvm"
	"github.com/quantmind-br/jlaunch/internal/launch"
	"github.com/quantmind-br/jlaunch/internal/paths"
	"github.com/rs/zerolog"
)

// App holds what the commands share
type App struct {
	Config  *config.Config
	Log     *zerolog.Logger
	Session *launch.Session
	Paths   *paths.Resolver

	// RunJVM runs fn on the thread the JVM needs; jvm.Run when nil
	RunJVM func(fn func() int) int
	// Memory reports available memory; heap.AvailableMemory when nil
	Memory heap.MemoryFunc
}

func (a *App) runJVM(fn func() int) int {
	if a.RunJVM != nil {
		return a.RunJVM(fn)
	}
	return jvm.Run(fn)
}

func (a *App) sizer(floorMB int) *heap.Sizer {
	s := heap.NewSizer(a.Session.Platform, floorMB)
	if a.Memory != nil {
		s = s.WithMemory(a.Memory)
	}
	return s
}

func (a *App) available(ctx context.Context) (uint64, error) {
	if a.Memory != nil {
		return a.Memory(ctx)
	}
	return heap.AvailableMemory(ctx)
}

// ExitError carries a process exit code out of a command. The message has
// already been shown when Err is nil.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
