package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/logger"
	"github.com/expath/xproj/internal/project"
	"github.com/expath/xproj/internal/revision"
)

var (
	// ErrNotImplemented is returned by phases with no engine behind them.
	ErrNotImplemented = errors.New("not implemented yet")
	// ErrTargetExists means setup was asked to create an existing directory.
	ErrTargetExists = errors.New("target directory already exists")
	// ErrCouldNotStart means the Java process never ran.
	ErrCouldNotStart = errors.New("could not start")
)

// Launcher starts Java processes. *javaproc.Launcher satisfies it.
type Launcher interface {
	Launch(d *javaproc.Descriptor) (*javaproc.Handle, error)
}

// Messages receives the user-facing outcome of each phase.
type Messages interface {
	Info(msg string)
	Error(msg string)
}

type nopMessages struct{}

func (nopMessages) Info(string)  {}
func (nopMessages) Error(string) {}

// Options controls how the orchestrator runs project phases.
type Options struct {
	Plugin   PluginDirs
	Launcher Launcher
	Messages Messages
	Logger   *log.Logger
	// JavaOpts are extra JVM arguments, placed before the classpath.
	JavaOpts []string
	// Revision is used for release when the project has no git HEAD.
	Revision string
}

func (opts Options) withDefaults() (Options, error) {
	if opts.Launcher == nil {
		return opts, fmt.Errorf("no launcher configured")
	}
	if opts.Messages == nil {
		opts.Messages = nopMessages{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Revision == "" {
		opts.Revision = "dev"
	}
	return opts, nil
}

// Orchestrator runs the phases of one project.
type Orchestrator struct {
	root *project.Root
	opts Options
}

func New(root *project.Root, opts Options) (*Orchestrator, error) {
	if root == nil {
		return nil, fmt.Errorf("no project root")
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{root: root, opts: opts}, nil
}

// Root returns the project the orchestrator is bound to.
func (o *Orchestrator) Root() *project.Root {
	return o.root
}

// Result is what a finished phase reports back.
type Result struct {
	Phase    Phase
	Success  bool
	ExitCode int
	// Log is the captured stdout followed by stderr.
	Log     string
	Outcome javaproc.Outcome
	// Err is set when the phase did not run to an exit code. A non-zero
	// exit is reported through Success and ExitCode only.
	Err error
	// Reported is set when Err was already sent to Messages.
	Reported bool
}

func (o *Orchestrator) Build(ctx context.Context) Result   { return o.Execute(ctx, PhaseBuild) }
func (o *Orchestrator) Test(ctx context.Context) Result    { return o.Execute(ctx, PhaseTest) }
func (o *Orchestrator) Doc(ctx context.Context) Result     { return o.Execute(ctx, PhaseDoc) }
func (o *Orchestrator) Release(ctx context.Context) Result { return o.Execute(ctx, PhaseRelease) }

// Deploy is reserved. It reports and returns ErrNotImplemented.
func (o *Orchestrator) Deploy(ctx context.Context) Result {
	err := fmt.Errorf("%s: %w", PhaseDeploy, ErrNotImplemented)
	o.opts.Messages.Error(fmt.Sprintf("%s: %s", PhaseDeploy.Title(), ErrNotImplemented))
	return Result{Phase: PhaseDeploy, ExitCode: -1, Err: err, Reported: true}
}

// Execute starts phase and blocks until it ends or ctx is done.
func (o *Orchestrator) Execute(ctx context.Context, phase Phase, observers ...javaproc.Listener) Result {
	if phase == PhaseDeploy {
		return o.Deploy(ctx)
	}
	run, err := o.Start(phase, observers...)
	if err != nil {
		o.opts.Messages.Error(fmt.Sprintf("%s: %s", phase.Title(), err))
		return Result{Phase: phase, ExitCode: -1, Err: err, Reported: true}
	}
	return run.Wait(ctx)
}

// Start launches phase and returns without waiting. Observers receive the
// process events before the user message for the phase is emitted.
func (o *Orchestrator) Start(phase Phase, observers ...javaproc.Listener) (*Run, error) {
	if phase == PhaseDeploy {
		return nil, fmt.Errorf("%s: %w", phase, ErrNotImplemented)
	}
	action, ok := Actions[phase]
	if !ok || phase == PhaseSetup {
		return nil, fmt.Errorf("%q is not a project phase", phase)
	}

	href := o.href(phase, action)

	// A missing dist/ is reported but does not stop the phase; the tool
	// will fail on its own if it really needs the directory.
	if action.WritesDist {
		if _, err := o.root.EnsureDist(); err != nil {
			o.opts.Messages.Error(err.Error())
		}
	}

	d, err := newDescriptor(o.opts, o.root.Dir)
	if err != nil {
		return nil, err
	}

	switch action.Mode {
	case ModePipeline:
		d.SetMainClass(calabashMain)
		d.AddArg("-i")
		d.AddArg("source=" + o.root.DescriptorURI())
		d.AddArg(href)
	case ModeStylesheet:
		rev := revision.Resolve(o.root.Dir, o.opts.Revision)
		o.opts.Logger.Debug("release revision", "revision", rev)
		d.SetMainClass(saxonMain)
		d.AddArg(saxonInit)
		d.AddArg("-xsl:" + href)
		d.AddArg("-s:" + o.root.DescriptorURI())
		d.AddArg("{" + project.Namespace + "}revision=" + rev)
	}

	return launch(o.opts, phase, d, observers)
}

// href picks the project override for action when there is one.
func (o *Orchestrator) href(phase Phase, action ActionConfig) string {
	if path, ok := o.root.Override(action.Override); ok {
		o.opts.Logger.Debug("project dir overrides component", "phase", phase, "file", action.Override, "dir", o.root.Private)
		return project.FileURI(path)
	}
	o.opts.Logger.Debug("project dir does not override component", "phase", phase, "file", action.Override, "dir", o.root.Private)
	return action.Standard
}

// newDescriptor wires the plugin classpath, package repository and JVM
// options shared by every phase.
func newDescriptor(opts Options, workDir string) (*javaproc.Descriptor, error) {
	cp, err := opts.Plugin.Classpath()
	if err != nil {
		return nil, err
	}

	d := javaproc.NewDescriptor()
	for _, jar := range cp {
		d.AddClasspath(jar)
	}
	for _, arg := range opts.JavaOpts {
		d.AddJavaArg(arg)
	}
	d.AddEnv(EnvRepo, opts.Plugin.Repo)
	d.AddSystemProperty(propSaxonRepo, opts.Plugin.Repo)
	d.AddSystemProperty(propCalabashRepo, opts.Plugin.Repo)
	d.AddSystemProperty(propConfigurer, calabashConfigurer)
	d.SetWorkingDir(workDir)

	opts.Logger.Debug("java descriptor", "classpath", len(cp), "repo", opts.Plugin.Repo, "dir", workDir)
	return d, nil
}

func launch(opts Options, phase Phase, d *javaproc.Descriptor, observers []javaproc.Listener) (*Run, error) {
	rec := javaproc.NewRecorder()
	pl := &phaseListener{phase: phase, msgs: opts.Messages, Recorder: rec}

	// The recorder goes last so that Wait returns only once every
	// observer has seen the final event.
	listeners := append(append([]javaproc.Listener{}, observers...), pl)
	d.SetListener(javaproc.Multi(listeners...))

	h, err := opts.Launcher.Launch(d)
	if err != nil {
		return nil, err
	}
	if h.Started() {
		opts.Logger.Debug("phase launched", "phase", phase, "pid", h.Pid())
	}
	return &Run{Phase: phase, handle: h, rec: rec}, nil
}

// phaseListener turns process events into user messages.
type phaseListener struct {
	phase Phase
	msgs  Messages
	*javaproc.Recorder
}

func (l *phaseListener) CouldNotStart(reason string) {
	l.msgs.Error(fmt.Sprintf("%s could not start: %s", l.phase.Title(), reason))
	l.Recorder.CouldNotStart(reason)
}

func (l *phaseListener) Ended(exitCode int) {
	if exitCode == 0 {
		l.msgs.Info(l.phase.Title() + " successful")
	} else {
		l.msgs.Error(fmt.Sprintf("%s failure: %d\n(please see the log)", l.phase.Title(), exitCode))
	}
	l.Recorder.Ended(exitCode)
}

// Run is a phase in flight.
type Run struct {
	Phase  Phase
	handle *javaproc.Handle
	rec    *javaproc.Recorder
}

// Handle exposes the underlying process.
func (r *Run) Handle() *javaproc.Handle {
	return r.handle
}

// Done is closed once the phase has reported its outcome.
func (r *Run) Done() <-chan struct{} {
	return r.rec.Done()
}

// Wait blocks until the phase ends. A done ctx stops the wait, not the
// process.
func (r *Run) Wait(ctx context.Context) Result {
	select {
	case <-r.rec.Done():
	case <-ctx.Done():
		out := r.rec.Outcome()
		return Result{Phase: r.Phase, ExitCode: -1, Log: out.Log(), Outcome: out, Err: ctx.Err()}
	}

	out := r.rec.Outcome()
	res := Result{
		Phase:    r.Phase,
		Success:  out.Success(),
		ExitCode: out.ExitCode,
		Log:      out.Log(),
		Outcome:  out,
	}
	if !out.Started {
		// phaseListener has shown the reason
		res.Err = fmt.Errorf("%s: %w: %s", r.Phase, ErrCouldNotStart, out.StartError)
		res.Reported = true
	}
	return res
}
