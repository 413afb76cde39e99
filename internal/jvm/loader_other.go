//go:build !(((darwin || linux) && (amd64 || arm64)) || windows)

package jvm

type unsupportedLoader struct{}

// NewLoader returns a Loader that always fails; the launcher then runs an
// external java instead. This covers linux/386, linux/arm and the other
// targets purego has no dlopen support for.
func NewLoader() Loader {
	return unsupportedLoader{}
}

// Open implements Loader.Open
func (unsupportedLoader) Open(path string) (Library, error) {
	return nil, &LoadError{Path: path, Err: ErrUnsupported}
}
