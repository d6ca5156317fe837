package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
)

// PluginDirs locates the JARs and the package repository of an xproj
// installation.
type PluginDirs struct {
	Root string
	Lib  string
	Repo string
}

// NewPluginDirs checks that dir/lib and dir/repo are directories.
func NewPluginDirs(dir string) (PluginDirs, error) {
	if dir == "" {
		return PluginDirs{}, fmt.Errorf("plugin dir is not set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return PluginDirs{}, fmt.Errorf("failed to resolve plugin dir %s: %w", dir, err)
	}

	p := PluginDirs{
		Root: abs,
		Lib:  filepath.Join(abs, "lib"),
		Repo: filepath.Join(abs, "repo"),
	}
	for _, sub := range []string{p.Lib, p.Repo} {
		info, err := os.Stat(sub)
		if err != nil {
			return PluginDirs{}, fmt.Errorf("the plugin subdir is not found: %s", sub)
		}
		if !info.IsDir() {
			return PluginDirs{}, fmt.Errorf("the plugin subdir is not a dir: %s", sub)
		}
	}
	return p, nil
}

// Classpath lists every file of lib/ in directory listing order.
func (p PluginDirs) Classpath() ([]string, error) {
	entries, err := os.ReadDir(p.Lib)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", p.Lib, err)
	}

	var cp []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		cp = append(cp, filepath.Join(p.Lib, e.Name()))
	}
	return cp, nil
}
