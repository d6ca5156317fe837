package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/ui"
)

var phaseShort = map[orchestrator.Phase]string{
	orchestrator.PhaseBuild:   "Build the project into dist/",
	orchestrator.PhaseTest:    "Run the project test suites",
	orchestrator.PhaseDoc:     "Generate the project documentation into dist/",
	orchestrator.PhaseRelease: "Package the project release into dist/",
	orchestrator.PhaseDeploy:  "Deploy the project (not implemented yet)",
}

// newPhaseCmd creates the command running one project phase
func newPhaseCmd(phase orchestrator.Phase) *cobra.Command {
	return &cobra.Command{
		Use:   string(phase) + " [file]",
		Short: phaseShort[phase],
		Long: phaseShort[phase] + `.

The project is the nearest directory enclosing [file] (or the current
directory) that has an xproject/ subdirectory. A project file in
xproject/ named after the phase replaces the standard component.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd.Context(), phase, args)
		},
	}
}

func runPhase(ctx context.Context, phase orchestrator.Phase, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	a.log.Debug("project found", "root", root.Dir)

	if phase == orchestrator.PhaseDeploy {
		// Nothing to launch, so the plugin setup is not required.
		o, err := orchestrator.New(root, orchestrator.Options{
			Launcher: javaproc.NewLauncher(a.cfg.Java, a.log),
			Messages: a.console,
			Logger:   a.log,
		})
		if err != nil {
			return err
		}
		o.Deploy(ctx)
		return errReported
	}

	opts, err := a.options()
	if err != nil {
		return err
	}
	o, err := orchestrator.New(root, opts)
	if err != nil {
		return err
	}

	var run *orchestrator.Run
	cfg := ui.WatchConfig{
		Title:   phase.Title() + " " + filepath.Base(root.Dir),
		Plain:   a.plain(),
		Console: a.console,
	}
	err = ui.Watch(ctx, cfg, func(l javaproc.Listener) (ui.Tracked, error) {
		r, err := o.Start(phase, l)
		if err != nil {
			return nil, err
		}
		run = r
		return r, nil
	})
	if err != nil {
		return err
	}
	return a.finish(run.Wait(ctx))
}
