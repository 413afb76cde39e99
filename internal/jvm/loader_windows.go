//go:build windows

package jvm

import (
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

type dllLoader struct{}

// NewLoader returns the Loader for this platform
func NewLoader() Loader {
	return dllLoader{}
}

// Open implements Loader.Open
func (dllLoader) Open(path string) (Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &dllLibrary{dll: dll}, nil
}

type dllLibrary struct {
	dll *windows.DLL
}

// Entry implements Library.Entry
func (l *dllLibrary) Entry(names ...string) (CreateFunc, error) {
	for _, name := range names {
		if proc, err := l.dll.FindProc(name); err == nil {
			return newCreateFunc(proc.Addr()), nil
		}
	}
	return nil, fmt.Errorf("%w in %s: %s", ErrSymbolNotFound, l.dll.Name, strings.Join(names, ", "))
}

// Close implements Library.Close
func (l *dllLibrary) Close() error {
	return l.dll.Release()
}

func call(fn uintptr, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(fn, args...)
	return r
}
