package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned when the walk reaches the filesystem root
	// without meeting a project marker.
	ErrNotFound = errors.New("not part of an XProject project")

	// ErrNoSuchPath is returned when the starting path does not exist.
	ErrNoSuchPath = errors.New("path does not exist")
)

// Find returns the nearest ancestor directory of path that holds the
// xproject/ marker directory. The walk starts at the parent of path.
func Find(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoSuchPath, abs)
		}
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	dir, err := walkUp(parent)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, abs)
	}
	return dir, nil
}

// FindFromDir is like Find but considers dir itself first.
func FindFromDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoSuchPath, abs)
		}
		return "", err
	}
	if !info.IsDir() {
		return Find(abs)
	}
	found, err := walkUp(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, abs)
	}
	return found, nil
}

// FindRoot locates and opens the project enclosing path.
func FindRoot(path string) (*Root, error) {
	dir, err := Find(path)
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// FindRootFromDir locates and opens the project enclosing dir, dir included.
func FindRootFromDir(dir string) (*Root, error) {
	found, err := FindFromDir(dir)
	if err != nil {
		return nil, err
	}
	return Open(found)
}

func walkUp(dir string) (string, error) {
	for {
		if hasMarker(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// hasMarker rejects a regular file named like the marker.
func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, PrivateDir))
	return err == nil && info.IsDir()
}
