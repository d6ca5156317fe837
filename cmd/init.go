package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/config"
	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the xproj configuration file",
	Long: `The init command writes the configuration file read by every other
command (see --config). It records:
- the plugin directory, holding lib/ (the JARs) and repo/ (the package repository)
- the Java executable and extra JVM options
- the revision used for releases outside a git checkout

When --plugin-dir is not given on a terminal, it is asked for.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
	initCmd.Flags().StringSlice("java-opt", nil, "Extra JVM option, repeatable (e.g. --java-opt=-Xmx1g)")
	initCmd.Flags().String("revision", "", "Revision used for releases outside a git checkout")
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	path := flags.configPath
	force, _ := cmd.Flags().GetBool("force")
	interactive := !flags.noTUI && ui.Interactive(os.Stdin)

	// Check if file already exists
	if _, err := os.Stat(path); err == nil && !force {
		if !interactive {
			return fmt.Errorf("configuration file already exists at %s. Use --force to overwrite", path)
		}
		overwrite, err := ui.RunConfirmPrompt("Overwrite "+path+"?", "A configuration file already exists.", false)
		if err != nil {
			return err
		}
		if !overwrite {
			a.console.Info("Configuration left unchanged")
			return nil
		}
	}

	// Start from what is loaded, flags and environment included
	cfg := a.cfg
	if opts, _ := cmd.Flags().GetStringSlice("java-opt"); len(opts) > 0 {
		cfg.JavaOpts = opts
	}
	if rev, _ := cmd.Flags().GetString("revision"); rev != "" {
		cfg.Revision = rev
	}

	if cfg.PluginDir == "" && interactive {
		dir, err := ui.RunTextInputPrompt(
			"Plugin directory",
			"The directory holding lib/ and repo/",
			"/opt/xproj", "",
			func(dir string) error {
				_, err := orchestrator.NewPluginDirs(dir)
				return err
			},
		)
		if err != nil {
			return err
		}
		if dir == "" {
			return fmt.Errorf("aborted")
		}
		cfg.PluginDir = dir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := orchestrator.NewPluginDirs(cfg.PluginDir); err != nil {
		a.console.Warn(err.Error())
	}

	if err := config.Write(path, cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	a.console.Success(fmt.Sprintf("Configuration written to %s", path))
	a.console.Info("Run 'xproj doctor' to check the setup")
	return nil
}
