// Package fsutil provides utility functions and constants for file system operations.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parents with DirModeDefault permissions.
// It returns an error if the path exists but is not a directory.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirModeDefault); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}
