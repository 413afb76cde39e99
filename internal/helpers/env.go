package helpers

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Environment abstracts the process environment so launch decisions can be
// tested without touching the real one
type Environment interface {
	Getenv(key string) string
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
	// Environ returns KEY=VALUE pairs, as os.Environ does
	Environ() []string
}

// OSEnvironment is the process environment
type OSEnvironment struct{}

// NewOSEnvironment returns the process environment
func NewOSEnvironment() *OSEnvironment {
	return &OSEnvironment{}
}

// Getenv implements Environment.Getenv
func (OSEnvironment) Getenv(key string) string { return os.Getenv(key) }

// LookupEnv implements Environment.LookupEnv
func (OSEnvironment) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Setenv implements Environment.Setenv
func (OSEnvironment) Setenv(key, value string) error { return os.Setenv(key, value) }

// Unsetenv implements Environment.Unsetenv
func (OSEnvironment) Unsetenv(key string) error { return os.Unsetenv(key) }

// Environ implements Environment.Environ
func (OSEnvironment) Environ() []string { return os.Environ() }

// MapEnvironment is an in-memory Environment for tests
type MapEnvironment struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMapEnvironment creates a MapEnvironment seeded with vars
func NewMapEnvironment(vars map[string]string) *MapEnvironment {
	m := &MapEnvironment{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

// Getenv implements Environment.Getenv
func (m *MapEnvironment) Getenv(key string) string {
	v, _ := m.LookupEnv(key)
	return v
}

// LookupEnv implements Environment.LookupEnv
func (m *MapEnvironment) LookupEnv(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[key]
	return v, ok
}

// Setenv implements Environment.Setenv
func (m *MapEnvironment) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}

// Unsetenv implements Environment.Unsetenv
func (m *MapEnvironment) Unsetenv(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

// Environ implements Environment.Environ, sorted by key
func (m *MapEnvironment) Environ() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// EnvValue returns the value of key in a KEY=VALUE list, last one wins
func EnvValue(environ []string, key string) (string, bool) {
	prefix := key + "="
	value, found := "", false
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			value, found = kv[len(prefix):], true
		}
	}
	return value, found
}
