package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/quantmind-br/jlaunch/internal/cmd"
	"github.com/quantmind-br/jlaunch/internal/config"
	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/launch"
	"github.com/quantmind-br/jlaunch/internal/logging"
	"github.com/quantmind-br/jlaunch/internal/paths"
	"github.com/quantmind-br/jlaunch/internal/ui"
	"github.com/spf13/afero"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

func run(argv []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fs := afero.NewOsFs()
	exe := helpers.Executable(argv[0])
	resolver := paths.NewResolver(fs, runtime.GOOS)

	// Load configuration
	cfg, err := config.Load(fs, resolver, resolver.InferAppDir(exe, "jars", config.DefaultBundledJavaDir))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return core.ExitConfiguration
	}

	ui.InitColors()
	switch cfg.Logging.Color {
	case "never":
		ui.DisableColors()
	case "always":
		ui.EnableColors()
	}

	// Initialize logger
	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: !ui.AreColorsEnabled(),
		Out:     stderr,
	})

	session := launch.NewSession(log)
	session.Executable = exe
	session.Argv = argv

	app := &cmd.App{
		Config:  cfg,
		Log:     log,
		Session: session,
		Paths:   resolver,
	}

	rootCmd := cmd.NewRootCmd(app, version)
	rootCmd.SetArgs(argv[1:])
	rootCmd.SetErr(stderr)
	return exitCode(rootCmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return core.ExitSuccess
	}

	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			ui.FprintError(stderr, "%v", exitErr.Err)
		}
		return exitErr.Code
	}

	ui.FprintError(stderr, "%v", err)
	return launch.ExitCode(err)
}
