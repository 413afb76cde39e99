package helpers

import (
	"context"
)

// MockCommandRunner is a mock implementation of CommandRunner for testing
type MockCommandRunner struct {
	RunCommandFunc  func(ctx context.Context, name string, args ...string) (string, error)
	RunAttachedFunc func(ctx context.Context, streams Streams, env []string, name string, args ...string) (int, error)
}

// RunCommand implements CommandRunner.RunCommand
func (m *MockCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	if m.RunCommandFunc != nil {
		return m.RunCommandFunc(ctx, name, args...)
	}
	return "", nil
}

// RunAttached implements CommandRunner.RunAttached
func (m *MockCommandRunner) RunAttached(ctx context.Context, streams Streams, env []string, name string, args ...string) (int, error) {
	if m.RunAttachedFunc != nil {
		return m.RunAttachedFunc(ctx, streams, env, name, args...)
	}
	return 0, nil
}

// ExecCall records one ProcessReplacer.Exec invocation
type ExecCall struct {
	Path string
	Argv []string
	Env  []string
}

// MockProcessReplacer records Exec calls instead of replacing the process
type MockProcessReplacer struct {
	ExecFunc func(path string, argv []string, env []string) error
	Calls    []ExecCall
}

// Exec implements ProcessReplacer.Exec
func (m *MockProcessReplacer) Exec(path string, argv []string, env []string) error {
	m.Calls = append(m.Calls, ExecCall{
		Path: path,
		Argv: append([]string(nil), argv...),
		Env:  append([]string(nil), env...),
	})
	if m.ExecFunc != nil {
		return m.ExecFunc(path, argv, env)
	}
	return nil
}
