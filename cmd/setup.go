package main

import (
	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/project"
	"github.com/expath/xproj/internal/ui"
)

// setupCmd represents the setup command
var setupCmd = &cobra.Command{
	Use:   "setup <dir>",
	Short: "Create a new project",
	Long: `The setup command creates a new XProject project in <dir>, which must
not exist yet. By default it runs the standard setup pipeline; --scaffold
writes the minimal layout (src/, xproject/project.xml) without Java.`,
	Args: cobra.ExactArgs(1),
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().Bool("scaffold", false, "Create the project layout offline from a descriptor template")
}

func runSetup(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	dir := args[0]

	scaffold, _ := cmd.Flags().GetBool("scaffold")
	if scaffold {
		root, err := project.Scaffold(dir)
		if err != nil {
			return err
		}
		a.console.Success("Project created in " + root.Dir)
		a.console.Highlight("Descriptor", root.Descriptor)
		a.console.Info("Edit the [[ ... ]] placeholders of the descriptor before building.")
		return nil
	}

	opts, err := a.options()
	if err != nil {
		return err
	}

	var run *orchestrator.SetupRun
	cfg := ui.WatchConfig{
		Title:   "Setup " + dir,
		Plain:   a.plain(),
		Console: a.console,
	}
	err = ui.Watch(cmd.Context(), cfg, func(l javaproc.Listener) (ui.Tracked, error) {
		r, err := orchestrator.StartSetup(dir, opts, l)
		if err != nil {
			return nil, err
		}
		run = r
		return r, nil
	})
	if err != nil {
		return err
	}

	o, res := run.Wait(cmd.Context())
	if err := a.finish(res); err != nil {
		return err
	}
	a.console.Highlight("Project", o.Root().Dir)
	return nil
}
