// Package appdir resolves the application-owned data directory that holds the
// memo database.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName is the directory name used under the user config dir.
const AppName = "memodesk"

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// Resolve returns override when set, otherwise <user config dir>/memodesk.
// The directory is created if it does not exist.
func Resolve(override string) (string, error) {
	dir := override
	if dir == "" {
		base, err := userConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		dir = filepath.Join(base, AppName)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return abs, nil
}
