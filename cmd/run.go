package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/ui"
)

// runCmd runs a phase picked by name or from a prompt
var runCmd = &cobra.Command{
	Use:   "run [phase] [file]",
	Short: "Run a project phase, asking which one when none is given",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		phase, err := orchestrator.ParsePhase(args[0])
		if err != nil {
			return err
		}
		return runPhase(cmd.Context(), phase, args[1:])
	}

	if flags.noTUI || !ui.Interactive(os.Stdin) {
		return fmt.Errorf("no phase given (one of build, test, doc, release, deploy)")
	}

	var options []ui.SelectOption
	for _, p := range orchestrator.Phases {
		options = append(options, ui.SelectOption{
			Label:       p.Title(),
			Value:       string(p),
			Description: phaseShort[p],
			Disabled:    p == orchestrator.PhaseDeploy,
		})
	}
	selected, err := ui.RunSelectPrompt("Which phase?", "", options)
	if err != nil {
		return err
	}
	if selected.Value == "" {
		return nil
	}
	return runPhase(cmd.Context(), orchestrator.Phase(selected.Value), nil)
}
