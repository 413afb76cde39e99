package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/quantmind-br/jlaunch/internal/config"
	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/launch"
	"github.com/quantmind-br/jlaunch/internal/libpath"
	"github.com/quantmind-br/jlaunch/internal/paths"
	"github.com/quantmind-br/jlaunch/internal/ui"
	"github.com/spf13/cobra"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(app *App, f *launchFlags) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Explain how the Java runtime is chosen",
		Long: `Show every location searched for a Java runtime and why it was accepted or
rejected, the native library search path and the heap the JVM would get.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := effectiveConfig(app, f)
			if err != nil {
				return err
			}
			if err := configureSession(app, cfg, f, cmd); err != nil {
				return err
			}
			return runDoctor(cmd.Context(), cmd.OutOrStdout(), app, fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "write a default jlaunch.toml and create the log directory")

	return cmd
}

func runDoctor(ctx context.Context, w io.Writer, app *App, fix bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s := app.Session
	var issues, warnings []string
	code := core.ExitJavaNotFound

	ui.FprintHeader(w, "Launcher Diagnostics")
	fmt.Fprintln(w)

	ui.FprintSubheader(w, "Platform")
	ui.FprintKeyValue(w, "Platform", s.Platform.String())
	ui.FprintKeyValue(w, "Process width", s.Platform.Width.String())
	ui.FprintKeyValue(w, "Library variable", s.Platform.LibraryEnv)
	ui.FprintKeyValue(w, "Application dir", valueOr(s.AppDir, "(unknown)"))
	fmt.Fprintln(w)

	ui.FprintSubheader(w, "Java Runtime")
	locator := launch.NewOrchestrator(s).Locator()
	candidate, err := locator.Locate(ctx)
	renderAttempts(w, locator.Attempts())

	switch {
	case err == nil:
		ui.FprintSuccess(w, "Selected %s", candidate)
		ui.FprintKeyValue(w, "Source", ui.ColorizeSource(candidate.Source))
		ui.FprintKeyValue(w, "Java home", candidate.JavaHome())
		ui.FprintKeyValue(w, "Library", candidate.Resolved)
	case errors.Is(err, jre.ErrNotFound):
		ui.FprintError(w, "No embeddable Java runtime")
		issues = append(issues, "no embeddable Java runtime; the system java will be used")
		candidate = nil
	default:
		ui.FprintError(w, "%v", err)
		issues = append(issues, err.Error())
		code = launch.ExitCode(err)
		candidate = nil
	}
	fmt.Fprintln(w)

	ui.FprintSubheader(w, "Native Library Path")
	path := libpath.NewResolver(s.Fs, s.Env, s.Platform, s.AppDir, app.Log).Resolve(candidate)
	if path.Len() == 0 {
		ui.FprintKeyValue(w, s.Platform.LibraryEnv, "(empty)")
	} else {
		ui.FprintList(w, path.Dirs())
	}
	if s.Platform.ReExecForLibraryPath && s.Env.Getenv(s.Platform.LibraryEnv) != path.Join(s.Platform.ListSeparator) {
		ui.FprintWarning(w, "%s differs; the launcher will restart itself once", s.Platform.LibraryEnv)
	}
	fmt.Fprintln(w)

	ui.FprintSubheader(w, "Memory")
	budget, err := app.sizer(s.MinHeapMB).Auto(ctx, s.HeapMB)
	if err != nil {
		ui.FprintWarning(w, "%v", err)
		warnings = append(warnings, "available memory unknown; no -Xmx will be passed")
	} else {
		ui.FprintKeyValue(w, "Heap", heap.Format(budget.MB))
		if budget.CeilingMB > 0 {
			ui.FprintKeyValue(w, "32-bit ceiling", heap.Format(budget.CeilingMB))
		}
		ui.FprintKeyValue(w, "Retry floor", heap.Format(app.sizer(s.MinHeapMB).Floor()))
		if avail, err := app.available(ctx); err == nil {
			ui.FprintKeyValue(w, "Available", humanize.IBytes(avail))
		}
	}
	fmt.Fprintln(w)

	ui.FprintSubheader(w, "Configuration")
	appConfig := paths.AppConfigFile(s.AppDir)
	ui.FprintKeyValue(w, "User config", app.Paths.UserConfigFile()+" "+ui.Status(fsops.Exists(s.Fs, app.Paths.UserConfigFile())))
	ui.FprintKeyValue(w, "App config", appConfig+" "+ui.Status(fsops.Exists(s.Fs, appConfig)))
	ui.FprintKeyValue(w, "Log file", app.Config.Paths.LogFile)
	if fix {
		warnings = append(warnings, applyFixes(w, app)...)
	}
	fmt.Fprintln(w)

	ui.FprintHeader(w, "Summary")
	if len(issues) == 0 {
		ui.FprintSuccess(w, "The JVM can be embedded")
	} else {
		ui.FprintError(w, "Found %d issue(s):", len(issues))
		ui.FprintList(w, issues)
	}
	if len(warnings) > 0 {
		ui.FprintWarning(w, "Found %d warning(s):", len(warnings))
		ui.FprintList(w, warnings)
	}

	if len(issues) > 0 {
		return &ExitError{Code: code, Err: fmt.Errorf("doctor found %d issue(s)", len(issues))}
	}
	return nil
}

func renderAttempts(w io.Writer, attempts []jre.Attempt) {
	if len(attempts) == 0 {
		ui.FprintKeyValue(w, "Searched", "nothing")
		return
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"", "Source", "Location", "Reason"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)
	for _, a := range attempts {
		_ = table.Append([]string{ui.Status(a.Accepted), string(a.Source), a.Location, a.Reason})
	}
	_ = table.Render()
}

func applyFixes(w io.Writer, app *App) []string {
	var warnings []string
	s := app.Session

	if s.AppDir != "" {
		written, err := config.EnsureAppConfig(s.Fs, s.AppDir)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("cannot write %s: %v", paths.AppConfigFile(s.AppDir), err))
		case written:
			ui.FprintSuccess(w, "Wrote %s", paths.AppConfigFile(s.AppDir))
		}
	}

	if logFile := app.Config.Paths.LogFile; logFile != "" {
		dir := filepath.Dir(logFile)
		if err := fsops.EnsureDir(s.Fs, dir, 0755); err != nil {
			warnings = append(warnings, err.Error())
		} else if err := fsops.CheckWritable(s.Fs, dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("log directory %s: %v", dir, err))
		}
	}
	return warnings
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
