package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/orchestrator"
)

// findCmd prints the project root, for scripts
var findCmd = &cobra.Command{
	Use:   "find [file]",
	Short: "Print the root of the project enclosing a file or the current directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), root.Dir)
		return nil
	},
}

// infoCmd shows the project descriptor
var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show the project descriptor and its component overrides",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	info, err := root.ReadInfo()
	if err != nil {
		return err
	}

	a.console.Header(info.Title)
	a.console.Highlight("Name", info.Name)
	a.console.Highlight("Abbrev", info.Abbrev)
	a.console.Highlight("Version", info.Version)
	a.console.Highlight("Root", root.Dir)
	a.console.Highlight("Descriptor", root.DescriptorURI())

	var overrides []string
	for _, phase := range orchestrator.Phases {
		action, ok := orchestrator.Actions[phase]
		if !ok {
			continue
		}
		if _, ok := root.Override(action.Override); ok {
			overrides = append(overrides, string(phase)+" ("+action.Override+")")
		}
	}
	if len(overrides) == 0 {
		overrides = append(overrides, "none")
	}
	a.console.Highlight("Overrides", strings.Join(overrides, ", "))
	return nil
}
