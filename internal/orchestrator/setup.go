package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/project"
)

// SetupRun is the setup pipeline in flight.
type SetupRun struct {
	*Run
	dir  string
	opts Options
}

// StartSetup launches the standard setup pipeline to create a new project
// in dir. dir must not exist yet; nothing is launched when it does.
func StartSetup(dir string, opts Options, observers ...javaproc.Listener) (*SetupRun, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if _, err := os.Lstat(abs); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, abs)
	}

	// Run from the parent when it exists so relative output lands beside
	// the new project.
	workDir := ""
	if info, err := os.Stat(filepath.Dir(abs)); err == nil && info.IsDir() {
		workDir = filepath.Dir(abs)
	}

	d, err := newDescriptor(opts, workDir)
	if err != nil {
		return nil, err
	}
	d.SetMainClass(calabashMain)
	d.AddArg(Actions[PhaseSetup].Standard)
	d.AddArg("dir=" + abs)

	run, err := launch(opts, PhaseSetup, d, observers)
	if err != nil {
		return nil, err
	}
	return &SetupRun{Run: run, dir: abs, opts: opts}, nil
}

// Wait blocks until the pipeline ends, then opens the new project.
func (s *SetupRun) Wait(ctx context.Context) (*Orchestrator, Result) {
	res := s.Run.Wait(ctx)
	if !res.Success {
		return nil, res
	}

	root, err := project.Open(s.dir)
	if err != nil {
		res.Success = false
		res.Err = fmt.Errorf("setup did not create a project: %w", err)
		s.opts.Messages.Error(res.Err.Error())
		res.Reported = true
		return nil, res
	}
	o, err := New(root, s.opts)
	if err != nil {
		res.Err = err
		return nil, res
	}
	return o, res
}

// Setup runs the setup pipeline for dir and binds an Orchestrator to the
// project it created.
func Setup(ctx context.Context, dir string, opts Options, observers ...javaproc.Listener) (*Orchestrator, Result) {
	s, err := StartSetup(dir, opts, observers...)
	if err != nil {
		res := Result{Phase: PhaseSetup, ExitCode: -1, Err: err}
		if opts.Messages != nil {
			opts.Messages.Error(fmt.Sprintf("%s: %s", PhaseSetup.Title(), err))
			res.Reported = true
		}
		return nil, res
	}
	return s.Wait(ctx)
}
