// Package jre finds a Java runtime whose JVM library can be loaded by this process.
package jre

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/quantmind-br/jlaunch/internal/search"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when no strategy produced a usable runtime
	ErrNotFound = errors.New("no usable Java runtime found")

	// ErrJavaHomeInvalid is returned when an explicit Java home holds no usable JVM library
	ErrJavaHomeInvalid = errors.New("configured Java home does not contain a usable JVM library")
)

const (
	// VendorTool reports installed JDKs on macOS
	VendorTool = "/usr/libexec/java_home"

	vendorToolTimeout = 5 * time.Second
	maxSymlinkHops    = 16
)

// macOS install roots probed after the vendor tool, in order
var (
	macVMRoots = []string{
		"/Library/Java/JavaVirtualMachines",
		"/System/Library/Java/JavaVirtualMachines",
	}
	macFrameworkHome = "/System/Library/Frameworks/JavaVM.framework/Versions/CurrentJDK/Home"
	macPluginHome    = "/Library/Internet Plug-Ins/JavaAppletPlugin.plugin/Contents/Home"
)

// Options configure a Locator
type Options struct {
	// AppDir is the application install directory
	AppDir string
	// JavaHome is an explicit override; when set no other strategy runs
	JavaHome string
	// BundledDir is the directory under AppDir holding bundled runtimes
	BundledDir string
}

// Attempt records one location the locator looked at
type Attempt struct {
	Source   core.Source
	Location string
	Accepted bool
	Reason   string
}

// Locator resolves a RuntimeCandidate using an ordered list of strategies
type Locator struct {
	fs       afero.Fs
	env      helpers.Environment
	runner   helpers.CommandRunner
	registry RegistryReader
	plat     platform.Platform
	finder   *search.Finder
	opts     Options
	log      *zerolog.Logger
	attempts []Attempt
}

// NewLocator creates a Locator for plat
func NewLocator(fs afero.Fs, env helpers.Environment, runner helpers.CommandRunner, plat platform.Platform, opts Options, log *zerolog.Logger) *Locator {
	if opts.BundledDir == "" {
		opts.BundledDir = "java"
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Locator{
		fs:       fs,
		env:      env,
		runner:   runner,
		registry: systemRegistry(),
		plat:     plat,
		finder:   search.NewFinder(fs, plat.Format, plat.Width),
		opts:     opts,
		log:      log,
	}
}

// WithRegistry replaces the Windows registry reader
func (l *Locator) WithRegistry(r RegistryReader) *Locator {
	l.registry = r
	return l
}

// Attempts returns the locations examined by the last Locate call
func (l *Locator) Attempts() []Attempt {
	return append([]Attempt(nil), l.attempts...)
}

// Locate runs the strategies in priority order and returns the first validated candidate
func (l *Locator) Locate(ctx context.Context) (*core.RuntimeCandidate, error) {
	l.attempts = nil

	if l.opts.JavaHome != "" {
		if c, ok := l.IsJavaHome(l.opts.JavaHome); ok {
			c.Source = core.SourceOverride
			l.record(core.SourceOverride, l.opts.JavaHome, true, "")
			return c, nil
		}
		l.record(core.SourceOverride, l.opts.JavaHome, false, "no JVM library")
		return nil, fmt.Errorf("%w: %s", ErrJavaHomeInvalid, l.opts.JavaHome)
	}

	strategies := []func(context.Context) *core.RuntimeCandidate{
		l.fromBundled,
		l.fromEnvironment,
		l.fromSystem,
	}

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c := strategy(ctx); c != nil {
			l.log.Debug().
				Str("source", string(c.Source)).
				Str("home", c.Home).
				Str("library", c.LibraryPath).
				Msg("java runtime selected")
			return c, nil
		}
	}

	return nil, ErrNotFound
}

// IsJREHome reports whether any platform library path under dir is a
// library of the host width, returning the first such candidate
func (l *Locator) IsJREHome(dir string) (*core.RuntimeCandidate, bool) {
	if dir == "" || !fsops.IsDir(l.fs, dir) {
		return nil, false
	}
	for _, lib := range l.plat.LibraryPaths {
		if m, ok := l.finder.Check(dir, lib); ok {
			return candidate(dir, dir, lib, m), true
		}
	}
	return nil, false
}

// IsJavaHome accepts dir when it, or its jre subdirectory, is a JRE home
func (l *Locator) IsJavaHome(dir string) (*core.RuntimeCandidate, bool) {
	if c, ok := l.IsJREHome(filepath.Join(dir, "jre")); ok {
		c.Root = dir
		return c, true
	}
	return l.IsJREHome(dir)
}

func (l *Locator) fromBundled(_ context.Context) *core.RuntimeCandidate {
	if l.opts.AppDir == "" {
		return nil
	}
	root := filepath.Join(l.opts.AppDir, l.opts.BundledDir)

	for _, name := range l.plat.BundledDirs {
		base := filepath.Join(root, name)
		if !fsops.IsDir(l.fs, base) {
			continue
		}
		for _, lib := range l.plat.LibraryPaths {
			if !strings.HasPrefix(lib, "jre/") {
				if m, ok := l.finder.FindNewest(base, 1, "jre/"+lib); ok {
					c := candidate(base, filepath.Join(m.Dir, "jre"), lib, m)
					c.Source = core.SourceBundled
					l.record(core.SourceBundled, c.Home, true, "")
					return c
				}
			}
			if m, ok := l.finder.FindNewest(base, 2, lib); ok {
				c := candidate(base, m.Dir, lib, m)
				c.Source = core.SourceBundled
				l.record(core.SourceBundled, c.Home, true, "")
				return c
			}
		}
		l.record(core.SourceBundled, base, false, "no JVM library of host width")
	}
	return nil
}

func (l *Locator) fromEnvironment(_ context.Context) *core.RuntimeCandidate {
	vars := []struct {
		name   string
		source core.Source
	}{
		{"JAVA_HOME", core.SourceJavaHome},
		{"JRE_HOME", core.SourceJREHome},
	}

	for _, v := range vars {
		dir := l.env.Getenv(v.name)
		if dir == "" {
			continue
		}
		if c, ok := l.IsJavaHome(dir); ok {
			c.Source = v.source
			l.record(v.source, dir, true, "")
			return c
		}
		l.record(v.source, dir, false, "no JVM library of host width")
	}
	return nil
}

func (l *Locator) fromSystem(ctx context.Context) *core.RuntimeCandidate {
	if c := l.fromPath(); c != nil {
		return c
	}

	for _, home := range l.registry.JavaHomes() {
		if c, ok := l.IsJavaHome(home); ok {
			c.Source = core.SourceVendor
			l.record(core.SourceVendor, home, true, "")
			return c
		}
		l.record(core.SourceVendor, home, false, "no JVM library of host width")
	}

	if l.plat.OS != "darwin" {
		return nil
	}

	if c := l.fromVendorTool(ctx); c != nil {
		return c
	}
	return l.fromWellKnown()
}

func (l *Locator) fromPath() *core.RuntimeCandidate {
	exe, ok := helpers.FindInPath(l.fs, l.env.Getenv("PATH"), l.plat.ListSeparator, l.plat.JavaExecutable())
	if !ok {
		l.record(core.SourcePath, l.plat.JavaExecutable(), false, "not found in PATH")
		return nil
	}

	resolved := helpers.ResolveSymlinks(l.fs, exe, maxSymlinkHops)
	if l.plat.OS == "darwin" && isFrameworkStub(exe, resolved) {
		l.record(core.SourcePath, exe, false, "framework stub")
		return nil
	}

	home := InstallRoot(resolved)
	if c, ok := l.IsJavaHome(home); ok {
		c.Source = core.SourcePath
		l.record(core.SourcePath, home, true, "")
		return c
	}
	l.record(core.SourcePath, home, false, "no JVM library of host width")
	return nil
}

func (l *Locator) fromVendorTool(ctx context.Context) *core.RuntimeCandidate {
	ctx, cancel := context.WithTimeout(ctx, vendorToolTimeout)
	defer cancel()

	out, err := l.runner.RunCommand(ctx, VendorTool, "-v", "1.8+")
	if err != nil {
		l.record(core.SourceVendor, VendorTool, false, err.Error())
		return nil
	}

	home := strings.TrimSpace(out)
	if c, ok := l.IsJavaHome(home); ok {
		c.Source = core.SourceVendor
		l.record(core.SourceVendor, home, true, "")
		return c
	}
	l.record(core.SourceVendor, home, false, "no JVM library of host width")
	return nil
}

func (l *Locator) fromWellKnown() *core.RuntimeCandidate {
	for _, root := range macVMRoots {
		for _, lib := range l.plat.LibraryPaths {
			if m, ok := l.finder.FindNewest(root, 1, lib); ok {
				c := candidate(root, m.Dir, lib, m)
				c.Source = core.SourceWellKnown
				l.record(core.SourceWellKnown, c.Home, true, "")
				return c
			}
		}
		l.record(core.SourceWellKnown, root, false, "no JVM library of host width")
	}

	for _, home := range []string{macFrameworkHome, macPluginHome} {
		if c, ok := l.IsJavaHome(home); ok {
			c.Source = core.SourceWellKnown
			l.record(core.SourceWellKnown, home, true, "")
			return c
		}
		l.record(core.SourceWellKnown, home, false, "no JVM library of host width")
	}
	return nil
}

func (l *Locator) record(source core.Source, location string, accepted bool, reason string) {
	l.attempts = append(l.attempts, Attempt{
		Source:   source,
		Location: location,
		Accepted: accepted,
		Reason:   reason,
	})
	l.log.Debug().
		Str("source", string(source)).
		Str("location", location).
		Bool("accepted", accepted).
		Str("reason", reason).
		Msg("java runtime probe")
}

// InstallRoot strips a trailing java executable and bin directory from path
func InstallRoot(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == "bin" {
		dir = filepath.Dir(dir)
	}
	return dir
}

// isFrameworkStub detects the macOS /usr/bin/java shim and the JavaVM framework commands
func isFrameworkStub(exe, resolved string) bool {
	if exe == "/usr/bin/java" || resolved == "/usr/bin/java" {
		return true
	}
	return strings.HasSuffix(filepath.ToSlash(resolved), "/Commands/java")
}

func candidate(root, home, lib string, m search.Match) *core.RuntimeCandidate {
	return &core.RuntimeCandidate{
		Root:        root,
		Home:        home,
		LibraryPath: lib,
		Resolved:    m.Path,
		ModTime:     m.ModTime,
		Width:       m.Width,
	}
}
