// Package libpath builds the dynamic linker search path the selected JVM
// needs and makes it effective for the running process.
package libpath

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// SearchPath is an ordered list of directories without empty or repeated entries
type SearchPath struct {
	dirs []string
	seen mapset.Set[string]
}

// NewSearchPath creates an empty SearchPath
func NewSearchPath() *SearchPath {
	return &SearchPath{seen: mapset.NewThreadUnsafeSet[string]()}
}

// ParseSearchPath splits value on sep, keeping the first occurrence of each entry
func ParseSearchPath(value, sep string) *SearchPath {
	p := NewSearchPath()
	if value == "" {
		return p
	}
	for _, dir := range strings.Split(value, sep) {
		p.Add(dir)
	}
	return p
}

// Add appends dir unless it is empty or already present. It reports whether dir was added.
func (p *SearchPath) Add(dir string) bool {
	if dir == "" || !p.seen.Add(dir) {
		return false
	}
	p.dirs = append(p.dirs, dir)
	return true
}

// Contains reports whether dir is in the path
func (p *SearchPath) Contains(dir string) bool {
	return p.seen.Contains(dir)
}

// Len returns the number of entries
func (p *SearchPath) Len() int {
	return len(p.dirs)
}

// Dirs returns a copy of the entries in order
func (p *SearchPath) Dirs() []string {
	return append([]string(nil), p.dirs...)
}

// Join renders the path with sep between entries
func (p *SearchPath) Join(sep string) string {
	return strings.Join(p.dirs, sep)
}
