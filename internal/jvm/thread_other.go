//go:build !darwin

package jvm

// Run executes fn on a dedicated OS thread and returns its exit code
func Run(fn func() int) int {
	return runLocked(fn)
}
