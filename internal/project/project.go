package project

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Layout of an XProject source tree.
const (
	PrivateDir = "xproject"
	Descriptor = "project.xml"
	DistDir    = "dist"
	SourceDir  = "src"

	// Namespace is the XProject vocabulary namespace.
	Namespace = "http://expath.org/ns/project"
)

// Root is a validated project directory.
type Root struct {
	Dir        string
	Private    string
	Descriptor string
}

// Open validates dir as a project root. The private subdir must be a
// directory and the descriptor a regular file.
func Open(dir string) (*Root, error) {
	if dir == "" {
		return nil, errors.New("project dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project dir %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project dir %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project is not a directory: %s", abs)
	}

	priv := filepath.Join(abs, PrivateDir)
	info, err = os.Stat(priv)
	if err != nil {
		return nil, fmt.Errorf("project dir does not have a %s/ subdir (in %s): %w", PrivateDir, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s subdir is not a directory: %s", PrivateDir, priv)
	}

	desc := filepath.Join(priv, Descriptor)
	info, err = os.Stat(desc)
	if err != nil {
		return nil, fmt.Errorf("project descriptor %s does not exist (in %s): %w", Descriptor, priv, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("project descriptor is not a regular file: %s", desc)
	}

	return &Root{Dir: abs, Private: priv, Descriptor: desc}, nil
}

// DescriptorURI returns the descriptor location as a file: URI.
func (r *Root) DescriptorURI() string {
	return FileURI(r.Descriptor)
}

// Override returns the path of name inside the private dir, and whether it
// exists. It is checked on every call.
func (r *Root) Override(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	path := filepath.Join(r.Private, name)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Dist returns the path of the dist/ output directory.
func (r *Root) Dist() string {
	return filepath.Join(r.Dir, DistDir)
}

// EnsureDist creates dist/ when it does not exist yet.
func (r *Root) EnsureDist() (string, error) {
	dist := r.Dist()
	info, err := os.Stat(dist)
	if err == nil {
		if !info.IsDir() {
			return dist, fmt.Errorf("project %s/ is not a directory: %s", DistDir, dist)
		}
		return dist, nil
	}
	if !os.IsNotExist(err) {
		return dist, err
	}
	if err := os.Mkdir(dist, 0o755); err != nil {
		return dist, fmt.Errorf("impossible to create the project %s/ subdir (in %s): %w", DistDir, dist, err)
	}
	return dist, nil
}

// FileURI renders an absolute path as a file: URI in the single-slash
// form, e.g. file:/p/xproject/project.xml.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths
		p = "/" + p
	}
	return "file:" + (&url.URL{Path: p}).EscapedPath()
}
