package libpath

import (
	"errors"
	"fmt"

	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/quantmind-br/jlaunch/internal/security"
	"github.com/rs/zerolog"
)

// ErrReExec is returned when the process could not be replaced after the
// library path changed
var ErrReExec = errors.New("failed to restart with updated library path")

// Action is what Enforce did
type Action int

const (
	// ActionNone means the inherited value already matched
	ActionNone Action = iota
	// ActionUpdated means the variable was set in-process only
	ActionUpdated
	// ActionReExec means the process image was replaced
	ActionReExec
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "unchanged"
	case ActionUpdated:
		return "updated"
	case ActionReExec:
		return "re-exec"
	default:
		return "unknown"
	}
}

// Guard makes a computed SearchPath effective, restarting the process when the
// dynamic linker only reads the variable at startup
type Guard struct {
	env      helpers.Environment
	replacer helpers.ProcessReplacer
	plat     platform.Platform
	exe      string
	argv     []string
	log      *zerolog.Logger
}

// NewGuard creates a Guard that re-executes exe with argv. argv must be
// captured before any option processing.
func NewGuard(env helpers.Environment, replacer helpers.ProcessReplacer, plat platform.Platform, exe string, argv []string, log *zerolog.Logger) *Guard {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Guard{
		env:      env,
		replacer: replacer,
		plat:     plat,
		exe:      exe,
		argv:     append([]string(nil), argv...),
		log:      log,
	}
}

// Enforce compares path with the inherited value of the platform variable.
// When they differ the variable is updated and, where required, the process
// is replaced. On a real system a successful re-exec never returns.
func (g *Guard) Enforce(path *SearchPath) (Action, error) {
	name := g.plat.LibraryEnv
	value := path.Join(g.plat.ListSeparator)

	current, _ := g.env.LookupEnv(name)
	if current == value {
		g.log.Debug().Str("var", name).Msg("library path already in effect")
		return ActionNone, nil
	}

	if err := security.ValidateEnvironmentVariable(name, value); err != nil {
		return ActionNone, err
	}

	if err := g.env.Setenv(name, value); err != nil {
		return ActionNone, fmt.Errorf("failed to set %s: %w", name, err)
	}

	if !g.plat.ReExecForLibraryPath {
		g.log.Debug().Str("var", name).Str("value", value).Msg("library path updated in-process")
		return ActionUpdated, nil
	}

	g.log.Debug().
		Str("var", name).
		Str("value", value).
		Strs("argv", g.argv).
		Msg("restarting with updated library path")

	if err := g.replacer.Exec(g.exe, g.argv, g.env.Environ()); err != nil {
		return ActionReExec, fmt.Errorf("%w: %w", ErrReExec, err)
	}
	return ActionReExec, nil
}
