package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/doctor"
	"github.com/expath/xproj/internal/ui"
)

// doctorCmd checks that phases can run
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the Java runtime, the plugin directory and the current project",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	d := doctor.Diagnose(doctor.Options{
		Java:      a.cfg.Java,
		PluginDir: a.cfg.PluginDir,
		WorkDir:   cwd,
	})
	c := a.console

	c.Header("xproj doctor")
	if d.Runtime.Installed {
		c.Highlight("Java", d.Runtime.Version+" ("+d.Runtime.Path+")")
	} else {
		c.Highlight("Java", "not found: "+a.cfg.Java)
	}

	c.Highlight("Plugin dir", orNone(d.Plugin.Dir))
	if d.Plugin.Valid {
		c.Highlight("JARs", fmt.Sprintf("%d in lib/", len(d.Plugin.Jars)))
		c.Highlight("Packages", orNone(strings.Join(d.Plugin.Packages, ", ")))
	}

	if d.Project.Found {
		c.Highlight("Project", d.Project.Dir)
		if d.Project.Name != "" {
			c.Highlight("Name", d.Project.Name+" "+d.Project.Version)
		}
		c.Highlight("Overrides", orNone(strings.Join(d.Project.Overrides, ", ")))
	}

	if d.Host.MemoryTotal > 0 {
		c.Highlight("Host", fmt.Sprintf("%s, %s free of %s", orNone(d.Host.Platform),
			ui.FormatBytes(d.Host.MemoryAvailable), ui.FormatBytes(d.Host.MemoryTotal)))
	}
	c.Divider()

	for _, w := range d.Warnings {
		c.Warn(w)
	}
	for _, issue := range d.Issues {
		c.Error(issue)
	}
	if !d.Healthy {
		return errReported
	}
	c.Success("Ready to run phases")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
