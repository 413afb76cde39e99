//go:build (darwin || linux) && (amd64 || arm64)

package jvm

import (
	"fmt"
	"strings"

	"github.com/ebitengine/purego"
)

type dlLoader struct{}

// NewLoader returns the Loader for this platform
func NewLoader() Loader {
	return dlLoader{}
}

// Open implements Loader.Open
func (dlLoader) Open(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &dlLibrary{path: path, handle: handle}, nil
}

type dlLibrary struct {
	path   string
	handle uintptr
}

// Entry implements Library.Entry
func (l *dlLibrary) Entry(names ...string) (CreateFunc, error) {
	for _, name := range names {
		sym, err := purego.Dlsym(l.handle, name)
		if err == nil && sym != 0 {
			return newCreateFunc(sym), nil
		}
	}
	return nil, fmt.Errorf("%w in %s: %s", ErrSymbolNotFound, l.path, strings.Join(names, ", "))
}

// Close implements Library.Close
func (l *dlLibrary) Close() error {
	return purego.Dlclose(l.handle)
}

func call(fn uintptr, args ...uintptr) uintptr {
	r, _, _ := purego.SyscallN(fn, args...)
	return r
}
