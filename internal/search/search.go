package search

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/probe"
	"github.com/spf13/afero"
)

// Match is a library found by FindNewest
type Match struct {
	Dir     string // directory the suffix was appended to
	Path    string // Dir joined with the suffix
	ModTime time.Time
	Width   core.Width
}

// Finder locates native libraries of the host width below a root directory
type Finder struct {
	fs     afero.Fs
	format probe.Format
	host   core.Width
}

// NewFinder creates a Finder for libraries of format loadable by host
func NewFinder(fs afero.Fs, format probe.Format, host core.Width) *Finder {
	return &Finder{fs: fs, format: format, host: host}
}

// Check returns the match for root/suffix when it is an acceptable library
func (f *Finder) Check(root, suffix string) (Match, bool) {
	path := filepath.Join(root, filepath.FromSlash(suffix))
	info, err := f.fs.Stat(path)
	if err != nil || info.IsDir() {
		return Match{}, false
	}

	width := probe.File(f.fs, path, f.format)
	if !width.Accepts(f.host) {
		return Match{}, false
	}

	return Match{
		Dir:     root,
		Path:    path,
		ModTime: info.ModTime(),
		Width:   width,
	}, true
}

// FindNewest looks for root/suffix and, while maxDepth > 0, for the same
// suffix below each non-hidden subdirectory of root. The match with the latest
// modification time wins; on equal times the first match found is kept.
// Subdirectories are visited in lexical order.
func (f *Finder) FindNewest(root string, maxDepth int, suffix string) (Match, bool) {
	best, found := f.Check(root, suffix)
	if maxDepth <= 0 {
		return best, found
	}

	entries, err := afero.ReadDir(f.fs, root)
	if err != nil {
		return best, found
	}

	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())
		// ReadDir does not follow symlinks; a linked runtime directory still counts
		if strings.HasPrefix(entry.Name(), ".") || !fsops.IsDir(f.fs, dir) {
			continue
		}
		m, ok := f.FindNewest(dir, maxDepth-1, suffix)
		if !ok {
			continue
		}
		if !found || m.ModTime.After(best.ModTime) {
			best, found = m, true
		}
	}

	return best, found
}

// ContainsLibrary reports whether dir directly holds at least one acceptable library
func (f *Finder) ContainsLibrary(dir string) bool {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if probe.Accepts(f.fs, filepath.Join(dir, entry.Name()), f.format, f.host) {
			return true
		}
	}
	return false
}

// LibraryDirs walks root and returns, in lexical order, every directory that
// directly holds an acceptable library. Hidden entries are skipped.
func (f *Finder) LibraryDirs(root string) []string {
	var dirs []string
	_ = afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path != root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() && f.ContainsLibrary(path) {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}
