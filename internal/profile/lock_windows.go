//go:build windows

package profile

import (
	"os"
	"path/filepath"
)

// On Windows Chromium holds an exclusive handle on "lockfile" in the
// user-data dir while running. Opening it for writing fails with a sharing
// violation when the browser is up.
func lockIndicatorPresent(userDataDir string) bool {
	path := filepath.Join(userDataDir, "lockfile")
	if _, err := os.Stat(path); err != nil {
		return false
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return true
	}
	f.Close()
	return false
}
