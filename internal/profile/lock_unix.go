//go:build unix

package profile

import (
	"os"
	"path/filepath"
)

// Chromium creates SingletonLock in the user-data dir as a symlink of the
// form "hostname-pid". A dangling symlink from a crashed browser still
// counts as locked; the operator removes it or launches and quits Brave.
func lockIndicatorPresent(userDataDir string) bool {
	_, err := os.Lstat(filepath.Join(userDataDir, "SingletonLock"))
	return err == nil
}
