package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// ProcessReplacer replaces the running process image. On success Exec does not return.
type ProcessReplacer interface {
	Exec(path string, argv []string, env []string) error
}

// OSProcessReplacer uses the platform exec call
type OSProcessReplacer struct{}

// NewOSProcessReplacer creates an OSProcessReplacer
func NewOSProcessReplacer() *OSProcessReplacer {
	return &OSProcessReplacer{}
}

// Exec implements ProcessReplacer.Exec
func (OSProcessReplacer) Exec(path string, argv []string, env []string) error {
	if err := execProcess(path, argv, env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}

// FindInPath searches the directories of pathList for an executable called name.
// On Windows the .exe suffix is tried as well.
func FindInPath(fs afero.Fs, pathList, sep, name string) (string, bool) {
	if strings.ContainsAny(name, `/\`) {
		if isExecutable(fs, name) {
			return name, true
		}
		return "", false
	}

	candidates := []string{name}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		candidates = append(candidates, name+".exe")
	}

	for _, dir := range strings.Split(pathList, sep) {
		if dir == "" {
			continue
		}
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if isExecutable(fs, p) {
				return p, true
			}
		}
	}
	return "", false
}

func isExecutable(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}

// ResolveSymlinks follows symbolic links of path up to maxHops times when the
// filesystem supports reading links, and returns the final path.
func ResolveSymlinks(fs afero.Fs, path string, maxHops int) string {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return path
	}
	for i := 0; i < maxHops; i++ {
		target, err := reader.ReadlinkIfPossible(path)
		if err != nil {
			return path
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return path
}

// Executable returns the absolute path of the running binary, falling back to argv0
func Executable(argv0 string) string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	if abs, err := filepath.Abs(argv0); err == nil {
		return abs
	}
	return argv0
}
