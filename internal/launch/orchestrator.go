package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/quantmind-br/jlaunch/internal/core"
	"github.com/quantmind-br/jlaunch/internal/fsops"
	"github.com/quantmind-br/jlaunch/internal/heap"
	"github.com/quantmind-br/jlaunch/internal/helpers"
	"github.com/quantmind-br/jlaunch/internal/jre"
	"github.com/quantmind-br/jlaunch/internal/jvm"
	"github.com/quantmind-br/jlaunch/internal/libpath"
	"github.com/quantmind-br/jlaunch/internal/transaction"
	"github.com/quantmind-br/jlaunch/internal/ui"
)

// Outcome describes how a Run ended
type Outcome struct {
	State    State
	ExitCode int
	JRE      *core.RuntimeCandidate
	Result   *core.LaunchResult
	HeapMB   int
	// Command is the external java command line or the re-exec argv
	Command []string
	History []State
}

// Orchestrator drives one launch through the state machine
type Orchestrator struct {
	s       *Session
	locator *jre.Locator
	sizer   *heap.Sizer
	tx      *transaction.Manager

	state   State
	history []State
	jre     *core.RuntimeCandidate
	result  *core.LaunchResult
	heapMB  int
	command []string
}

// NewOrchestrator creates an Orchestrator for s
func NewOrchestrator(s *Session) *Orchestrator {
	log := s.logger()
	return &Orchestrator{
		s: s,
		locator: jre.NewLocator(s.Fs, s.Env, s.Runner, s.Platform, jre.Options{
			AppDir:     s.AppDir,
			JavaHome:   s.JavaHome,
			BundledDir: s.BundledDir,
		}, log),
		sizer: heap.NewSizer(s.Platform, s.MinHeapMB),
		tx:    transaction.NewManager(log),
		state: StateNotStarted,
	}
}

// Locator returns the runtime locator used by Run
func (o *Orchestrator) Locator() *jre.Locator {
	return o.locator
}

// WithSizer replaces the heap sizer
func (o *Orchestrator) WithSizer(s *heap.Sizer) *Orchestrator {
	o.sizer = s
	return o
}

// State returns the current state
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes the launch. On a real system a successful re-exec or external
// exec does not return; the returned Outcome then only matters to tests.
func (o *Orchestrator) Run(ctx context.Context, opts core.LaunchOptions) (*Outcome, error) {
	opts = opts.Clone()
	log := o.s.logger()
	o.transition(StateProbing)

	if !opts.UseSystemJVM {
		c, err := o.locator.Locate(ctx)
		switch {
		case err == nil:
			o.jre = c
		case errors.Is(err, jre.ErrNotFound):
			log.Debug().Msg("no embeddable Java runtime found")
		default:
			return o.fail(err)
		}
	}

	paths := libpath.NewResolver(o.s.Fs, o.s.Env, o.s.Platform, o.s.AppDir, log).Resolve(o.jre)
	libraryPath := paths.Join(o.s.Platform.ListSeparator)
	o.heapMB = o.computeHeap(ctx, opts)

	if opts.DryRun {
		return o.dryRun(opts, libraryPath)
	}

	guard := libpath.NewGuard(o.s.Env, o.s.Replacer, o.s.Platform, o.s.Executable, o.s.Argv, log)
	action, err := guard.Enforce(paths)
	if err != nil {
		return o.fail(err)
	}
	if action == libpath.ActionReExec {
		o.command = append([]string(nil), o.s.Argv...)
		o.transition(StateReExecuted)
		return o.outcome(core.ExitSuccess), nil
	}

	external := o.jvmOptions(opts, libraryPath, false)
	if opts.UseSystemJVM || o.jre == nil {
		o.warn("falling back to system Java")
		return o.fallback(ctx, external, opts)
	}

	result, vm := o.attempt(o.jvmOptions(opts, libraryPath, true))
	o.result = &result

	switch result.Kind {
	case core.ResultStarted:
		o.clearHeapRetry()
		return o.runEmbedded(vm, opts)

	case core.ResultOutOfMemory:
		return o.retryWithLessMemory()

	case core.ResultCreateFailed:
		if result.Code == jvm.StatusErr && o.canRetryAmbiguous() {
			return o.retryWithLessMemory()
		}
		log.Error().Int("status", result.Code).Str("library", o.jre.Resolved).Msg("JVM creation failed")
		o.warn("falling back to System JVM")
		o.unsetJavaHome()

	case core.ResultLoadFailed:
		if result.ConfigError {
			o.warn("Java home %s does not exist, falling back to system Java", o.jre.Home)
			break
		}
		log.Error().Err(result.Reason).Str("library", o.jre.Resolved).Msg("could not load JVM library")
		o.warn("could not load %s, falling back to System JVM", o.jre.Resolved)
		o.unsetJavaHome()

	case core.ResultEntryPointMissing:
		log.Error().Err(result.Reason).Msg("JVM library has no creation entry point")
		o.warn("%v, falling back to System JVM", result.Reason)
		o.unsetJavaHome()
	}

	return o.fallback(ctx, external, opts)
}

func (o *Orchestrator) transition(to State) {
	o.s.logger().Debug().Str("from", o.state.String()).Str("to", to.String()).Msg("launch state")
	o.state = to
	o.history = append(o.history, to)
}

func (o *Orchestrator) outcome(code int) *Outcome {
	return &Outcome{
		State:    o.state,
		ExitCode: code,
		JRE:      o.jre,
		Result:   o.result,
		HeapMB:   o.heapMB,
		Command:  o.command,
		History:  append([]State(nil), o.history...),
	}
}

func (o *Orchestrator) fail(err error) (*Outcome, error) {
	o.transition(StateFailed)
	return o.outcome(ExitCode(err)), err
}

func (o *Orchestrator) warn(format string, args ...interface{}) {
	w := o.s.Streams.Stderr
	if w == nil {
		w = io.Discard
	}
	ui.FprintWarning(w, format, args...)
}

// computeHeap picks the heap from, in order, the explicit request, the last
// -Xmx option, configuration and available memory. Zero means unknown.
func (o *Orchestrator) computeHeap(ctx context.Context, opts core.LaunchOptions) int {
	if opts.HeapMB > 0 {
		return o.sizer.Compute(opts.HeapMB, 0).MB
	}
	if mb, ok := heap.FromJVMOptions(opts.JVMOptions); ok {
		return o.sizer.Compute(mb, 0).MB
	}
	if o.s.HeapMB > 0 {
		return o.sizer.Compute(o.s.HeapMB, 0).MB
	}
	b, err := o.sizer.Auto(ctx, 0)
	if err != nil {
		o.s.logger().Warn().Err(err).Msg("could not determine heap size")
		return 0
	}
	return b.MB
}

// jvmOptions assembles the option vector. The embedded form also carries
// java.home for runtimes nested in a JDK.
func (o *Orchestrator) jvmOptions(opts core.LaunchOptions, libraryPath string, embedded bool) []string {
	var out []string
	if embedded && o.jre != nil {
		if opt, ok := JavaHomeOption(o.jre.Home); ok {
			out = append(out, opt)
		}
	}
	if o.s.AppDir != "" {
		out = append(out, Property(PropAppDir, o.s.AppDir))
	}
	if o.s.Executable != "" {
		out = append(out, Property(PropExecutable, o.s.Executable))
	}
	if libraryPath != "" {
		out = append(out, Property(PropLibraryPath, libraryPath))
	}
	if opts.ClassPath != "" {
		out = append(out, Property(PropClassPath, opts.ClassPath))
	}

	user := opts.JVMOptions
	if o.heapMB > 0 {
		user = heap.ReplaceMaxHeap(user, o.heapMB)
	}
	return append(out, user...)
}

// attempt opens the library and creates the VM. JAVA_HOME points at the
// runtime for the duration of the attempt and is restored unless the VM starts.
func (o *Orchestrator) attempt(options []string) (core.LaunchResult, jvm.VM) {
	log := o.s.logger()
	if err := o.tx.SetEnv(o.s.Env, "JAVA_HOME", o.jre.Home); err != nil {
		log.Warn().Err(err).Msg("could not set JAVA_HOME")
	}

	lib, err := o.s.Loader.Open(o.jre.Resolved)
	if err != nil {
		o.rollback()
		return core.LaunchResult{
			Kind:        core.ResultLoadFailed,
			Reason:      err,
			ConfigError: !fsops.IsDir(o.s.Fs, o.jre.Home),
		}, nil
	}

	create, err := lib.Entry(o.s.Platform.CreateSymbols...)
	if err != nil {
		_ = lib.Close()
		o.rollback()
		return core.LaunchResult{Kind: core.ResultEntryPointMissing, Reason: err}, nil
	}

	log.Debug().Strs("options", options).Msg("creating JVM")
	vm, status := create(options)
	switch status {
	case jvm.StatusOK:
		o.tx.Commit()
		return core.LaunchResult{Kind: core.ResultStarted}, vm
	case jvm.StatusNoMem:
		o.rollback()
		return core.LaunchResult{Kind: core.ResultOutOfMemory, Code: status}, nil
	default:
		o.rollback()
		return core.LaunchResult{Kind: core.ResultCreateFailed, Code: status}, nil
	}
}

func (o *Orchestrator) rollback() {
	if err := o.tx.Rollback(); err != nil {
		o.s.logger().Warn().Err(err).Msg("could not restore environment")
	}
}

func (o *Orchestrator) unsetJavaHome() {
	if err := o.s.Env.Unsetenv("JAVA_HOME"); err != nil {
		o.s.logger().Warn().Err(err).Msg("could not unset JAVA_HOME")
	}
}

func (o *Orchestrator) runEmbedded(vm jvm.VM, opts core.LaunchOptions) (*Outcome, error) {
	o.transition(StateEmbeddedRunning)

	classes := []string{opts.MainClass}
	if opts.LegacyMainClass != "" && opts.LegacyMainClass != opts.MainClass {
		classes = append(classes, opts.LegacyMainClass)
	}

	err := vm.CallMain(classes, opts.AppOptions)
	if derr := vm.Destroy(); derr != nil {
		o.s.logger().Warn().Err(derr).Msg("JVM shutdown reported an error")
	}

	switch {
	case errors.Is(err, jvm.ErrClassNotFound), errors.Is(err, jvm.ErrMethodNotFound):
		return o.fail(fmt.Errorf("%w: %w", ErrEntryPoint, err))
	case err != nil:
		o.s.logger().Debug().Err(err).Msg("application ended abnormally")
		return o.outcome(core.ExitGeneral), err
	}
	return o.outcome(core.ExitSuccess), nil
}

// canRetryAmbiguous allows one reduced-heap restart per process lineage for a
// creation failure that may hide an out-of-memory condition
func (o *Orchestrator) canRetryAmbiguous() bool {
	if o.heapMB <= 0 {
		return false
	}
	if _, retried := o.s.Env.LookupEnv(HeapRetryEnv); retried {
		return false
	}
	_, ok := o.sizer.Reduce(o.heapMB)
	return ok
}

// clearHeapRetry keeps the retry marker away from the application and from
// any external java
func (o *Orchestrator) clearHeapRetry() {
	if _, ok := o.s.Env.LookupEnv(HeapRetryEnv); !ok {
		return
	}
	if err := o.s.Env.Unsetenv(HeapRetryEnv); err != nil {
		o.s.logger().Warn().Err(err).Msg("could not clear heap retry marker")
	}
}

// retryWithLessMemory restarts the whole process with a smaller --mem
func (o *Orchestrator) retryWithLessMemory() (*Outcome, error) {
	o.transition(StateRetryingWithLessMemory)
	log := o.s.logger()

	if o.heapMB <= 0 {
		return o.fail(fmt.Errorf("%w: heap size unknown", ErrOutOfMemory))
	}
	next, ok := o.sizer.Reduce(o.heapMB)
	if !ok {
		return o.fail(fmt.Errorf("%w: cannot reduce heap below %s", ErrOutOfMemory, heap.Format(o.heapMB)))
	}

	if o.result != nil && o.result.Kind == core.ResultCreateFailed {
		if err := o.s.Env.Setenv(HeapRetryEnv, "1"); err != nil {
			log.Warn().Err(err).Msg("could not mark heap retry")
		}
	}

	argv := RewriteMemoryArgs(o.s.Argv, next)
	log.Info().
		Str("from", heap.Format(o.heapMB)).
		Str("to", heap.Format(next)).
		Msg("retrying with less memory")

	o.command = argv
	if err := o.s.Replacer.Exec(o.s.Executable, argv, o.s.Env.Environ()); err != nil {
		return o.fail(fmt.Errorf("%w: %w", libpath.ErrReExec, err))
	}
	o.transition(StateReExecuted)
	out := o.outcome(core.ExitSuccess)
	out.HeapMB = next
	return out, nil
}

// javaCommand finds the external java: JAVA_HOME/bin first, then PATH
func (o *Orchestrator) javaCommand() (string, bool) {
	name := o.s.Platform.JavaExecutable()
	if home := o.s.Env.Getenv("JAVA_HOME"); home != "" {
		p := filepath.Join(home, "bin", name)
		if fsops.Exists(o.s.Fs, p) {
			return p, true
		}
	}
	return helpers.FindInPath(o.s.Fs, o.s.Env.Getenv("PATH"), o.s.Platform.ListSeparator, name)
}

func externalCommand(java string, jvmOpts []string, opts core.LaunchOptions) []string {
	argv := make([]string, 0, len(jvmOpts)+len(opts.AppOptions)+2)
	argv = append(argv, java)
	argv = append(argv, jvmOpts...)
	argv = append(argv, opts.MainClass)
	return append(argv, opts.AppOptions...)
}

func (o *Orchestrator) fallback(ctx context.Context, jvmOpts []string, opts core.LaunchOptions) (*Outcome, error) {
	o.transition(StateFallbackExternal)
	o.clearHeapRetry()

	java, ok := o.javaCommand()
	if !ok {
		return o.fail(fmt.Errorf("%w: %s is not in PATH", ErrNoJava, o.s.Platform.JavaExecutable()))
	}
	argv := externalCommand(java, jvmOpts, opts)
	o.command = argv
	o.s.logger().Debug().Strs("argv", argv).Msg("running external java")

	if o.s.Platform.HasExec {
		if err := o.s.Replacer.Exec(java, argv, o.s.Env.Environ()); err != nil {
			return o.fail(fmt.Errorf("%w: %w", ErrNoJava, err))
		}
		return o.outcome(core.ExitSuccess), nil
	}

	code, err := o.s.Runner.RunAttached(ctx, o.s.Streams, o.s.Env.Environ(), java, argv[1:]...)
	if err != nil {
		return o.fail(fmt.Errorf("%w: %w", ErrNoJava, err))
	}
	return o.outcome(code), nil
}

func (o *Orchestrator) dryRun(opts core.LaunchOptions, libraryPath string) (*Outcome, error) {
	java := o.s.Platform.JavaExecutable()
	if o.jre != nil && !opts.UseSystemJVM {
		java = filepath.Join(o.jre.JavaHome(), "bin", java)
	} else if p, ok := o.javaCommand(); ok {
		java = p
	}

	o.command = externalCommand(java, o.jvmOptions(opts, libraryPath, o.jre != nil), opts)
	out := o.s.Streams.Stdout
	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out, FormatCommand(o.s.Platform.OS, o.command))
	return o.outcome(core.ExitSuccess), nil
}
