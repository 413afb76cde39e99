package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/quantmind-br/jlaunch/internal/config"
	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/launch"
	"github.com/quantmind-br/jlaunch/internal/security"
	"github.com/quantmind-br/jlaunch/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type launchFlags struct {
	javaHome      string
	system        bool
	dryRun        bool
	debug         bool
	printJavaHome bool
	mem           string
	jvmOptions    []string
	mainClass     string
	appDir        string
}

// NewRootCmd creates the root command, which launches the application
func NewRootCmd(app *App, version string) *cobra.Command {
	var f launchFlags

	cmd := &cobra.Command{
		Use:   "jlaunch [flags] [--] [application arguments...]",
		Short: "Start a Java application in an embedded JVM",
		Long: `Start a Java application by loading the JVM library into the launcher process.

The runtime is searched for in the application's java/ directory, then through
JAVA_HOME and JRE_HOME, then on the system. When no runtime can be embedded the
application is started with an external java command instead.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if f.debug {
				debug := app.Log.Level(zerolog.DebugLevel)
				*app.Log = debug
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, app, &f, args)
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.BoolVar(&f.debug, "debug", false, "log every launcher decision to stderr")
	pflags.StringVar(&f.appDir, "app-dir", "", "application directory (default: the launcher's directory)")

	flags := cmd.Flags()
	flags.StringVar(&f.javaHome, "java-home", "", "use the runtime in this directory")
	flags.BoolVar(&f.system, "system", false, "skip embedding and run the system java")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the java command line instead of running it")
	flags.BoolVar(&f.printJavaHome, "print-java-home", false, "print the selected Java home and exit")
	flags.StringVar(&f.mem, "mem", "", "maximum heap, e.g. 512m or 2g (default: 3/4 of available memory)")
	flags.StringVar(&f.mem, "memory", "", "alias for --mem")
	flags.StringArrayVarP(&f.jvmOptions, "jvm-option", "J", nil, "pass an option to the JVM (repeatable)")
	flags.StringVar(&f.mainClass, "main-class", "", "class whose main method is run")
	_ = flags.MarkHidden("memory")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: core.ExitInvalidArgs, Err: err}
	})

	cmd.AddCommand(NewDoctorCmd(app, &f))
	cmd.AddCommand(NewCompletionCmd(app))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}

func runLaunch(cmd *cobra.Command, app *App, f *launchFlags, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := effectiveConfig(app, f)
	if err != nil {
		return err
	}
	opts, err := buildOptions(cfg, f, args)
	if err != nil {
		return &ExitError{Code: core.ExitInvalidArgs, Err: err}
	}
	if err := configureSession(app, cfg, f, cmd); err != nil {
		return err
	}

	if f.printJavaHome {
		return printJavaHome(ctx, cmd, app)
	}

	s := app.Session
	errOut := cmd.ErrOrStderr()
	code := app.runJVM(func() int {
		o := launch.NewOrchestrator(s)
		if app.Memory != nil {
			o.WithSizer(app.sizer(s.MinHeapMB))
		}
		out, err := o.Run(ctx, opts)
		if err != nil {
			app.Log.Debug().Err(err).Str("state", o.State().String()).Msg("launch failed")
			ui.FprintError(errOut, "%v", err)
		}
		if out == nil {
			return launch.ExitCode(err)
		}
		return out.ExitCode
	})

	if code != core.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

// effectiveConfig reloads configuration when --app-dir names another installation
func effectiveConfig(app *App, f *launchFlags) (*config.Config, error) {
	if f.appDir == "" {
		return app.Config, nil
	}
	cfg, err := config.Load(app.Session.Fs, app.Paths, app.Paths.ExpandHome(f.appDir))
	if err != nil {
		return nil, &ExitError{Code: core.ExitConfiguration, Err: err}
	}
	app.Config = cfg
	return cfg, nil
}

func buildOptions(cfg *config.Config, f *launchFlags, args []string) (core.LaunchOptions, error) {
	opts := core.LaunchOptions{
		AppOptions:      append([]string(nil), args...),
		MainClass:       cfg.Launcher.MainClass,
		LegacyMainClass: cfg.Launcher.LegacyMainClass,
		ClassPath:       cfg.JVM.ClassPath,
		DryRun:          f.dryRun,
		UseSystemJVM:    f.system || cfg.Launcher.SystemJVM,
	}
	opts.JVMOptions = append(opts.JVMOptions, cfg.JVM.Options...)
	opts.JVMOptions = append(opts.JVMOptions, f.jvmOptions...)

	for _, o := range opts.JVMOptions {
		if err := security.ValidateJVMOption(o); err != nil {
			return opts, err
		}
	}

	if f.mainClass != "" {
		opts.MainClass = f.mainClass
		opts.LegacyMainClass = ""
	}
	if err := security.ValidateClassName(opts.MainClass); err != nil {
		return opts, fmt.Errorf("main class: %w", err)
	}

	if f.mem != "" {
		if err := security.ValidateHeapSize(f.mem); err != nil {
			return opts, fmt.Errorf("--mem: %w", err)
		}
		mb, err := heap.ParseSize(f.mem)
		if err != nil {
			return opts, fmt.Errorf("--mem: %w", err)
		}
		opts.HeapMB = mb
	}
	return opts, nil
}

func configureSession(app *App, cfg *config.Config, f *launchFlags, cmd *cobra.Command) error {
	s := app.Session
	s.AppDir = cfg.Launcher.AppDir
	s.BundledDir = cfg.Launcher.BundledJavaDir
	s.MinHeapMB = cfg.JVM.MinHeapMB
	s.Streams = helpers.Streams{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}

	mb, err := cfg.HeapMB()
	if err != nil {
		return &ExitError{Code: core.ExitConfiguration, Err: err}
	}
	s.HeapMB = mb

	home := f.javaHome
	if home == "" {
		home = cfg.Launcher.JavaHome
	}
	if home == "" {
		s.JavaHome = ""
		return nil
	}
	home, err = security.ValidateJavaHome(app.Paths.ExpandHome(home), s.AppDir)
	if err != nil {
		return &ExitError{Code: core.ExitConfiguration, Err: err}
	}
	s.JavaHome = home
	return nil
}

func printJavaHome(ctx context.Context, cmd *cobra.Command, app *App) error {
	c, err := launch.NewOrchestrator(app.Session).Locator().Locate(ctx)
	if err != nil {
		code := launch.ExitCode(err)
		if errors.Is(err, jre.ErrNotFound) {
			code = core.ExitJavaNotFound
		}
		return &ExitError{Code: code, Err: err}
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.JavaHome())
	return nil
}
