package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/argscope/internal/config"
)

// SourceFiles expands the command-line paths into the source files to
// analyze. Files are kept as given, whatever their extension; directories
// are walked for files with a recognized source extension, skipping hidden
// directories and __pycache__. Each file appears once, in argument order.
func SourceFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, root := range paths {
		if !isDir(root) {
			add(root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
					return filepath.SkipDir
				}
				return nil
			}
			if config.HasSourceExt(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ConfigSearchDir returns where the configuration search for path starts.
// If the path points to a source file, returns the file's directory.
// If the path points to a directory, returns the path itself.
func ConfigSearchDir(path string) string {
	if isDir(path) {
		return path
	}
	return filepath.Dir(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
