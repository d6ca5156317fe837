package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside the user config dir.
const FileName = "config.yaml"

// Environment overrides.
const (
	EnvPluginDir = "XPROJ_PLUGIN_DIR"
	EnvJava      = "XPROJ_JAVA"
)

// Config is the xproj configuration file.
type Config struct {
	// PluginDir holds lib/ (the JARs) and repo/ (the package repository).
	PluginDir string   `yaml:"plugin_dir"`
	Java      string   `yaml:"java,omitempty"`
	JavaOpts  []string `yaml:"java_opts,omitempty"`
	// Revision is passed to stylesheets when the project is not a git checkout.
	Revision string `yaml:"revision,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Java:     "java",
		Revision: "dev",
		LogLevel: "info",
	}
}

// DefaultPath returns <user config dir>/xproj/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, "xproj", FileName)
}

// Write writes the config as a YAML file.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read reads the YAML file over the defaults.
func Read(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path when it exists, falls back to the defaults otherwise,
// and applies the environment overrides.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		cfg = Default()
	}

	if v := os.Getenv(EnvPluginDir); v != "" {
		cfg.PluginDir = v
	}
	if v := os.Getenv(EnvJava); v != "" {
		cfg.Java = v
	}
	return cfg, nil
}

// Validate checks the settings needed to launch a phase.
func (c Config) Validate() error {
	if c.PluginDir == "" {
		return fmt.Errorf("invalid configuration: missing plugin_dir (set it in the config file or %s)", EnvPluginDir)
	}
	return nil
}
