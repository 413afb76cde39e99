// Package transaction records how to undo process-level changes, such as
// environment variables set for one JVM creation attempt, and undoes them in
// reverse order.
package transaction

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/rs/zerolog"
)

// UndoFunc reverses one change
type UndoFunc func() error

type step struct {
	name string
	undo UndoFunc
}

// Manager holds a stack of undo steps
type Manager struct {
	mu     sync.Mutex
	steps  []step
	logger *zerolog.Logger
}

// NewManager creates a Manager; logger may be nil
func NewManager(logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{logger: logger}
}

// Add pushes an undo step
func (m *Manager) Add(name string, fn UndoFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, undo: fn})
}

// Len returns the number of pending steps
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// SetEnv sets key to value in env and records how to restore the previous state
func (m *Manager) SetEnv(env helpers.Environment, key, value string) error {
	prev, had := env.LookupEnv(key)
	if err := env.Setenv(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	m.Add("env "+key, restoreEnv(env, key, prev, had))
	return nil
}

// UnsetEnv removes key from env and records how to restore it
func (m *Manager) UnsetEnv(env helpers.Environment, key string) error {
	prev, had := env.LookupEnv(key)
	if !had {
		return nil
	}
	if err := env.Unsetenv(key); err != nil {
		return fmt.Errorf("failed to unset %s: %w", key, err)
	}
	m.Add("env "+key, restoreEnv(env, key, prev, had))
	return nil
}

func restoreEnv(env helpers.Environment, key, prev string, had bool) UndoFunc {
	return func() error {
		if had {
			return env.Setenv(key, prev)
		}
		return env.Unsetenv(key)
	}
}

// Rollback runs every undo step, newest first, and clears the stack. All
// failures are collected into one error.
func (m *Manager) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.steps) == 0 {
		return nil
	}

	var result *multierror.Error
	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		m.logger.Debug().Str("step", s.name).Msg("undoing")
		if err := s.undo(); err != nil {
			m.logger.Warn().Err(err).Str("step", s.name).Msg("undo failed")
			result = multierror.Append(result, fmt.Errorf("undo %s: %w", s.name, err))
		}
	}
	m.steps = nil

	return result.ErrorOrNil()
}

// Commit keeps the changes and forgets the undo steps
func (m *Manager) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = nil
}
