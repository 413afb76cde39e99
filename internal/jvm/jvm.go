// Package jvm loads a JVM shared library and drives it through the JNI
// invocation interface.
package jvm

import (
	"errors"
	"fmt"
	"strings"
)

// JNI status codes returned by the creation entry point
const (
	StatusOK    = 0
	StatusErr   = -1
	StatusNoMem = -4
)

const (
	// Version1_4 is the JNI version requested at creation
	Version1_4 = 0x00010004

	MainMethod    = "main"
	MainSignature = "([Ljava/lang/String;)V"
)

var (
	// ErrUnsupported is returned where this build cannot embed a JVM
	ErrUnsupported = errors.New("embedding a JVM is not supported on this platform")

	// ErrSymbolNotFound is returned when none of the creation entry points is exported
	ErrSymbolNotFound = errors.New("JVM creation entry point not found")

	// ErrClassNotFound is returned when no candidate entry class could be loaded
	ErrClassNotFound = errors.New("entry class not found")

	// ErrMethodNotFound is returned when the entry class has no static main(String[])
	ErrMethodNotFound = errors.New("main method not found")

	// ErrUncaughtException is returned when main terminated with an exception
	ErrUncaughtException = errors.New("main method threw an exception")
)

// LoadError reports a shared library that could not be opened
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CreateFunc invokes the creation entry point with options. It returns the
// VM on StatusOK and the raw JNI status otherwise.
type CreateFunc func(options []string) (VM, int)

// Loader opens JVM shared libraries
type Loader interface {
	Open(path string) (Library, error)
}

// Library is an opened JVM shared library
type Library interface {
	// Entry resolves the first exported symbol among names
	Entry(names ...string) (CreateFunc, error)
	Close() error
}

// VM is a running embedded JVM attached to the calling thread
type VM interface {
	// CallMain loads the first class of classes that exists and invokes its
	// static main method with args. It blocks until main returns.
	CallMain(classes []string, args []string) error
	// Destroy detaches the thread and waits for the VM to shut down
	Destroy() error
}

// SlashedName converts a dotted class name to the JNI internal form
func SlashedName(class string) string {
	return strings.ReplaceAll(class, ".", "/")
}
