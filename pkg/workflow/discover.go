package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wfrun/wfrun/pkg/fileutil"
	"github.com/wfrun/wfrun/pkg/logger"
)

var discoverLog = logger.New("workflow:discover")

// Discover returns the workflow files in a directory, sorted by name.
// Subdirectories are not searched; the platform does not either.
func Discover(dir string) ([]string, error) {
	discoverLog.Printf("Discovering workflows: dir=%s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !fileutil.IsYAMLFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	discoverLog.Printf("Discovered %d workflow files", len(paths))
	return paths, nil
}

// Resolve expands command-line workflow arguments into concrete files:
// a directory argument is discovered, a file argument is used as-is, and
// no arguments means discovering the default directory.
func Resolve(args []string, defaultDir string) ([]string, error) {
	if len(args) == 0 {
		return Discover(defaultDir)
	}

	var paths []string
	for _, arg := range args {
		if fileutil.DirExists(arg) {
			discovered, err := Discover(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, discovered...)
			continue
		}
		if !fileutil.FileExists(arg) {
			return nil, fmt.Errorf("workflow not found: %s", arg)
		}
		paths = append(paths, arg)
	}
	return paths, nil
}
