package libpath

import (
	"path/filepath"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/quantmind-br/jlaunch/internal/search"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Resolver computes the library search path for an application and its JVM
type Resolver struct {
	fs     afero.Fs
	env    helpers.Environment
	plat   platform.Platform
	finder *search.Finder
	appDir string
	log    *zerolog.Logger
}

// NewResolver creates a Resolver for the application in appDir
func NewResolver(fs afero.Fs, env helpers.Environment, plat platform.Platform, appDir string, log *zerolog.Logger) *Resolver {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Resolver{
		fs:     fs,
		env:    env,
		plat:   plat,
		finder: search.NewFinder(fs, plat.Format, plat.Width),
		appDir: appDir,
		log:    log,
	}
}

// Resolve starts from the inherited value of the platform variable and appends
// the application's native directories followed by those the JVM itself needs.
// jre may be nil when no runtime was located.
func (r *Resolver) Resolve(jre *core.RuntimeCandidate) *SearchPath {
	path := ParseSearchPath(r.env.Getenv(r.plat.LibraryEnv), r.plat.ListSeparator)

	if r.appDir != "" {
		for _, top := range []string{"lib", "mm"} {
			for _, name := range r.plat.BundledDirs {
				r.addDir(path, filepath.Join(r.appDir, top, name))
			}
		}
		for _, dir := range r.finder.LibraryDirs(filepath.Join(r.appDir, "lib")) {
			r.add(path, dir)
		}
	}

	if jre != nil {
		for _, dir := range r.jreDirs(jre) {
			r.addDir(path, dir)
		}
	}

	return path
}

// jreDirs returns the directories the JVM library's own dependencies live in
func (r *Resolver) jreDirs(jre *core.RuntimeCandidate) []string {
	switch r.plat.OS {
	case "windows":
		return []string{filepath.Join(jre.Home, "bin")}
	case "darwin":
		return nil
	}

	// Legacy layouts keep libjava and friends one level above the VM
	// directory; newer ones resolve them through jli.
	vmDir := filepath.Dir(jre.Resolved)
	archDir := filepath.Dir(vmDir)
	if fsops.IsDir(r.fs, filepath.Join(archDir, "jli")) {
		return nil
	}
	return []string{archDir, vmDir}
}

func (r *Resolver) addDir(path *SearchPath, dir string) {
	if fsops.IsDir(r.fs, dir) {
		r.add(path, dir)
	}
}

func (r *Resolver) add(path *SearchPath, dir string) {
	if path.Add(dir) {
		r.log.Debug().Str("dir", dir).Msg("library path entry added")
	}
}
