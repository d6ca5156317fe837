package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/expath/xproj/internal/config"
	"github.com/expath/xproj/internal/javaproc"
	"github.com/expath/xproj/internal/logger"
	"github.com/expath/xproj/internal/orchestrator"
	"github.com/expath/xproj/internal/project"
	"github.com/expath/xproj/internal/ui"
)

// errReported means the failure was already shown to the user.
var errReported = errors.New("failed")

// app bundles what every command needs: settings, logger and console.
type app struct {
	cfg     config.Config
	log     *log.Logger
	console *ui.Console
}

// loadApp reads the config file and applies the global flags over it.
func loadApp() (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.pluginDir != "" {
		cfg.PluginDir = flags.pluginDir
	}
	if flags.java != "" {
		cfg.Java = flags.java
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	lcfg := logger.DefaultConfig()
	lcfg.Level = logger.LogLevel(cfg.LogLevel)
	l := logger.New(lcfg)
	l.Debug("configuration loaded", "path", flags.configPath, "plugin_dir", cfg.PluginDir, "java", cfg.Java)

	return &app{cfg: cfg, log: l, console: ui.NewConsole(os.Stdout, os.Stderr)}, nil
}

// options validates the plugin setup and returns orchestrator options.
func (a *app) options() (orchestrator.Options, error) {
	if err := a.cfg.Validate(); err != nil {
		return orchestrator.Options{}, err
	}
	plugin, err := orchestrator.NewPluginDirs(a.cfg.PluginDir)
	if err != nil {
		return orchestrator.Options{}, err
	}
	return orchestrator.Options{
		Plugin:   plugin,
		Launcher: javaproc.NewLauncher(a.cfg.Java, a.log),
		Messages: a.console,
		Logger:   a.log,
		JavaOpts: a.cfg.JavaOpts,
		Revision: a.cfg.Revision,
	}, nil
}

// plain reports whether output should scroll instead of using the run view.
func (a *app) plain() bool {
	return flags.noTUI || !ui.Interactive(os.Stdout) || !ui.Interactive(os.Stdin)
}

// finish turns a phase result into the command error. Errors the
// orchestrator already showed are not printed again.
func (a *app) finish(res orchestrator.Result) error {
	if res.Err != nil && !res.Reported {
		return res.Err
	}
	if !res.Success {
		a.log.Debug("phase failed", "phase", res.Phase, "exit", res.ExitCode)
		return errReported
	}
	return nil
}

// resolveRoot finds the project enclosing args[0], or the current
// directory when no argument is given. A directory argument is searched
// from itself, a file from its parent.
func resolveRoot(args []string) (*project.Root, error) {
	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		return project.FindRootFromDir(cwd)
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return project.FindRootFromDir(path)
	}
	return project.FindRoot(path)
}
