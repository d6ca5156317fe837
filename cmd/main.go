package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/expath/xproj/internal/config"
	"github.com/expath/xproj/internal/orchestrator"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configPath string
	pluginDir  string
	java       string
	logLevel   string
	noTUI      bool
}

var flags globalFlags

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xproj",
	Short: "Build, test, document and release EXPath XProject projects",
	Long: `xproj runs the standard XProject actions on the project enclosing the
current directory (or a given file). Each action is an XProc pipeline run by
Calabash or an XSLT stylesheet run by Saxon; a project can override any of
them with its own file in xproject/.

Usage:
  xproj setup <dir>   Create a new project
  xproj build         Build the project into dist/
  xproj test          Run the project tests
  xproj doc           Generate the project documentation
  xproj release       Package the project release`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultPath(), "Path to the configuration file")
	pf.StringVar(&flags.pluginDir, "plugin-dir", "", "Directory holding lib/ and repo/ (overrides the config)")
	pf.StringVar(&flags.java, "java", "", "Java executable (overrides the config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&flags.noTUI, "no-tui", false, "Disable the run view (use plain scrolling output)")

	// Add subcommands
	for _, phase := range orchestrator.Phases {
		rootCmd.AddCommand(newPhaseCmd(phase))
	}
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Already shown by the command
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
