package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/quantmind-br/jlaunch/internal/config"
	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/jvm"
	"github.com/quantmind-br/jlaunch/internal/launch"
	"github.com/quantmind-br/jlaunch/internal/libpath"
	"github.com/quantmind-br/jlaunch/internal/paths"
	"github.com/quantmind-br/jlaunch/internal/platform"
	"github.com/quantmind-br/jlaunch/internal/probe"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundledLib = "/opt/app/java/linux-amd64/jre/lib/server/libjvm.so"

type testApp struct {
	*App
	fs  afero.Fs
	env *helpers.MapEnvironment
	lib *jvm.MockLibrary
}

func newTestApp(t *testing.T, env map[string]string) *testApp {
	t.Helper()
	fs := afero.NewMemMapFs()
	log := zerolog.New(io.Discard)
	resolver := paths.NewResolverWithHome(fs, "linux", "/home/user")

	cfg, err := config.Load(fs, resolver, "/opt/app")
	require.NoError(t, err)

	lib := &jvm.MockLibrary{}
	menv := helpers.NewMapEnvironment(env)
	session := &launch.Session{
		Fs:       fs,
		Env:      menv,
		Runner:   &helpers.MockCommandRunner{},
		Replacer: &helpers.MockProcessReplacer{},
		Loader: &jvm.MockLoader{
			OpenFunc: func(string) (jvm.Library, error) { return lib, nil },
		},
		Platform:   platform.For("linux", "amd64"),
		Log:        &log,
		Executable: "/opt/app/jlaunch",
		Argv:       []string{"/opt/app/jlaunch"},
	}

	return &testApp{
		App: &App{
			Config:  cfg,
			Log:     &log,
			Session: session,
			Paths:   resolver,
			RunJVM:  func(fn func() int) int { return fn() },
			Memory:  func(context.Context) (uint64, error) { return 4 << 30, nil },
		},
		fs:  fs,
		env: menv,
		lib: lib,
	}
}

func (a *testApp) withBundledJRE(t *testing.T) {
	t.Helper()
	header := make([]byte, probe.HeaderSize)
	copy(header, []byte{0x7f, 'E', 'L', 'F', 2})
	require.NoError(t, a.fs.MkdirAll(filepath.Dir(bundledLib), 0755))
	require.NoError(t, afero.WriteFile(a.fs, bundledLib, header, 0644))
}

// settle presets the library variable so that no restart is requested
func (a *testApp) settle(t *testing.T) {
	t.Helper()
	s := a.Session
	loc := jre.NewLocator(s.Fs, s.Env, s.Runner, s.Platform, jre.Options{AppDir: "/opt/app"}, nil).
		WithRegistry(jre.StaticRegistry(nil))
	c, err := loc.Locate(context.Background())
	if err != nil {
		c = nil
	}
	path := libpath.NewResolver(s.Fs, s.Env, s.Platform, "/opt/app", nil).Resolve(c)
	require.NoError(t, a.env.Setenv(s.Platform.LibraryEnv, path.Join(s.Platform.ListSeparator)))
}

func (a *testApp) execute(args ...string) (string, string, error) {
	root := NewRootCmd(a.App, "1.2.3")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

func TestRoot_EmbedsBundledRuntime(t *testing.T) {
	app := newTestApp(t, nil)
	app.withBundledJRE(t)
	app.settle(t)

	_, _, err := app.execute("--", "image.tif", "--headless")
	require.NoError(t, err)

	require.NotNil(t, app.lib.VM)
	assert.Equal(t, []string{config.DefaultMainClass, config.DefaultLegacyMainClass}, app.lib.VM.Classes)
	assert.Equal(t, []string{"image.tif", "--headless"}, app.lib.VM.Args)
	assert.Contains(t, app.lib.Options[0], "-Xmx3072m")
}

func TestRoot_DryRun(t *testing.T) {
	app := newTestApp(t, nil)
	app.withBundledJRE(t)

	out, _, err := app.execute("--dry-run", "--mem=1g", "-J-Dfoo=bar", "--", "-batch", "macro.ijm")
	require.NoError(t, err)

	assert.Contains(t, out, "/opt/app/java/linux-amd64/bin/java -Djava.home=/opt/app/java/linux-amd64")
	assert.Contains(t, out, "-Dfoo=bar")
	assert.Contains(t, out, "-Xmx1024m")
	assert.Contains(t, out, config.DefaultMainClass+" -batch macro.ijm")
	assert.Nil(t, app.lib.VM)
}

func TestRoot_MainClassOverride(t *testing.T) {
	app := newTestApp(t, nil)
	app.withBundledJRE(t)
	app.settle(t)

	_, _, err := app.execute("--main-class", "org.example.Main")
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example.Main"}, app.lib.VM.Classes)
}

func TestRoot_AppDirReloadsConfig(t *testing.T) {
	app := newTestApp(t, nil)
	require.NoError(t, afero.WriteFile(app.fs, "/srv/other/jlaunch.toml", []byte(`
[launcher]
main_class = "org.example.Other"
`), 0644))

	out, _, err := app.execute("--app-dir", "/srv/other", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "-Djlaunch.dir=/srv/other")
	assert.Contains(t, out, "org.example.Other")
}

func TestRoot_DebugRaisesLevel(t *testing.T) {
	app := newTestApp(t, nil)
	require.NotEqual(t, zerolog.DebugLevel, app.Log.GetLevel())

	_, _, err := app.execute("--debug", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, app.Log.GetLevel())
}

func TestRoot_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"--no-such-flag"}, core.ExitInvalidArgs},
		{"bad memory", []string{"--mem=lots"}, core.ExitInvalidArgs},
		{"bad JVM option", []string{"-J", "Xmx1g"}, core.ExitInvalidArgs},
		{"bad main class", []string{"--main-class", "not a class"}, core.ExitInvalidArgs},
		{"missing java home", []string{"--java-home", "jdk"}, core.ExitConfiguration},
		{"no java at all", nil, core.ExitJavaNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			app.settle(t)

			_, _, err := app.execute(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, exitCode(t, err))
		})
	}
}

func TestRoot_ErrorIsReported(t *testing.T) {
	app := newTestApp(t, nil)
	app.settle(t)

	_, stderr, err := app.execute("image.tif")
	require.Error(t, err)
	assert.Contains(t, stderr, "no java executable found")
	assert.Contains(t, stderr, "Warning: falling back to system Java")
}

func TestRoot_PrintJavaHome(t *testing.T) {
	t.Run("bundled", func(t *testing.T) {
		app := newTestApp(t, nil)
		app.withBundledJRE(t)

		out, _, err := app.execute("--print-java-home")
		require.NoError(t, err)
		assert.Equal(t, "/opt/app/java/linux-amd64\n", out)
		assert.Nil(t, app.lib.VM)
	})

	t.Run("nothing found", func(t *testing.T) {
		app := newTestApp(t, nil)

		_, _, err := app.execute("--print-java-home")
		assert.Equal(t, core.ExitJavaNotFound, exitCode(t, err))
	})

	t.Run("invalid override", func(t *testing.T) {
		app := newTestApp(t, nil)
		app.withBundledJRE(t)

		_, _, err := app.execute("--print-java-home", "--java-home", "/opt/none")
		assert.Equal(t, core.ExitConfiguration, exitCode(t, err))
		assert.ErrorIs(t, err, jre.ErrJavaHomeInvalid)
	})
}

func TestDoctor(t *testing.T) {
	app := newTestApp(t, nil)
	app.withBundledJRE(t)

	out, _, err := app.execute("doctor")
	require.NoError(t, err)

	assert.Contains(t, out, "Launcher Diagnostics")
	assert.Contains(t, out, "linux-amd64")
	assert.Contains(t, out, string(core.SourceBundled))
	assert.Contains(t, out, "/opt/app/java/linux-amd64/jre")
	assert.Contains(t, out, "/opt/app/java/linux-amd64/jre/lib/server")
	assert.Contains(t, out, "3.0 GiB")
	assert.Contains(t, out, "4.0 GiB")
	assert.Contains(t, out, "The JVM can be embedded")
	assert.NotContains(t, out, "Wrote")
}

func TestDoctor_NoRuntime(t *testing.T) {
	app := newTestApp(t, nil)

	out, _, err := app.execute("doctor")
	assert.Equal(t, core.ExitJavaNotFound, exitCode(t, err))
	assert.Contains(t, out, "No embeddable Java runtime")
}

func TestDoctor_Fix(t *testing.T) {
	app := newTestApp(t, nil)
	app.withBundledJRE(t)

	out, _, err := app.execute("doctor", "--fix")
	require.NoError(t, err)

	assert.Contains(t, out, "Wrote /opt/app/jlaunch.toml")
	ok, err := afero.Exists(app.fs, "/opt/app/jlaunch.toml")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.DirExists(app.fs, "/home/user/.local/state/jlaunch")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		shell := shell
		t.Run(shell, func(t *testing.T) {
			app := newTestApp(t, nil)

			out, _, err := app.execute("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "jlaunch")
		})
	}

	app := newTestApp(t, nil)
	_, _, err := app.execute("completion", "tcsh")
	assert.Error(t, err)
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := &ExitError{Code: 3, Err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)

	assert.Equal(t, "exit status 8", (&ExitError{Code: 8}).Error())
}
