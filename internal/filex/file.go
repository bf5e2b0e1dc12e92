// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "storefront"

// EnsureDir creates dir (and parents) readable only by the current user and
// returns its absolute path. Relative paths are resolved against the working
// directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// DefaultStateDir returns the per-user directory for local client state,
// falling back to a dot directory in the working directory when the
// platform has no user config location.
func DefaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(base, appDirName)
}
