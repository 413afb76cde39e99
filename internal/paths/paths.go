package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/spf13/afero"
)

// AppConfigName is the per-installation configuration file under the app dir
const AppConfigName = "jlaunch.toml"

const bundleSuffix = "/Contents/MacOS"

// Resolver centralizes the launcher's well-known locations
type Resolver struct {
	fs      afero.Fs
	homeDir string
	goos    string
}

// NewResolver creates a Resolver using the current user's home
func NewResolver(fs afero.Fs, goos string) *Resolver {
	homeDir, _ := os.UserHomeDir()
	return NewResolverWithHome(fs, goos, homeDir)
}

// NewResolverWithHome creates a Resolver with an explicit home directory
func NewResolverWithHome(fs afero.Fs, goos, homeDir string) *Resolver {
	return &Resolver{fs: fs, homeDir: homeDir, goos: goos}
}

// HomeDir returns the resolved home directory
func (r *Resolver) HomeDir() string {
	return r.homeDir
}

// ConfigDir returns ~/.config/jlaunch
func (r *Resolver) ConfigDir() string {
	return filepath.Join(r.homeDir, ".config", "jlaunch")
}

// UserConfigFile returns the per-user configuration file
func (r *Resolver) UserConfigFile() string {
	return filepath.Join(r.ConfigDir(), "config.toml")
}

// LogFile returns the default rotating log location
func (r *Resolver) LogFile() string {
	return filepath.Join(r.homeDir, ".local", "state", "jlaunch", "jlaunch.log")
}

// AppConfigFile returns the configuration file of the installation at appDir
func AppConfigFile(appDir string) string {
	return filepath.Join(appDir, AppConfigName)
}

// InferAppDir returns the installation directory for the launcher at exe: its
// directory, or for a macOS bundle launcher in X.app/Contents/MacOS, the bundle
// itself when it holds one of markers and the directory containing it otherwise.
func (r *Resolver) InferAppDir(exe string, markers ...string) string {
	dir := filepath.Dir(exe)
	if r.goos != "darwin" || !strings.HasSuffix(filepath.ToSlash(dir), bundleSuffix) {
		return dir
	}

	bundle := filepath.Dir(filepath.Dir(dir))
	for _, m := range markers {
		if fsops.IsDir(r.fs, filepath.Join(bundle, m)) {
			return bundle
		}
	}
	return filepath.Dir(bundle)
}

// ExpandHome replaces a leading ~ with the home directory and expands
// environment variables
func (r *Resolver) ExpandHome(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = filepath.Join(r.homeDir, path[1:])
	}
	return os.ExpandEnv(path)
}
