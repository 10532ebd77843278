package storage

import (
	"os"
	"path/filepath"
)

// DefaultDir returns the per-user data directory for the engine database,
// creating it if needed.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		base = home
	}
	dir := filepath.Join(base, "marlin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
