// Package fileutil provides utility functions for working with file paths
// and file operations.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ResolveDir cleans a directory path, makes it absolute relative to base,
// and verifies it exists. Used to resolve step working directories before
// a process is spawned into them.
func ResolveDir(base, dir string) (string, error) {
	if dir == "" {
		return "", errors.New("directory cannot be empty")
	}
	resolved := dir
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)
	if !DirExists(resolved) {
		return "", fmt.Errorf("directory does not exist: %s", resolved)
	}
	return resolved, nil
}

// IsYAMLFile reports whether the path has a .yml or .yaml extension.
func IsYAMLFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
