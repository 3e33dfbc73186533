package profile

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrProfileNotFound means no Brave profile directory exists on this machine.
var ErrProfileNotFound = errors.New("brave profile directory not found, make sure Brave is installed and has been launched at least once")

// Locate returns the default Brave profile directory for the current OS.
// The first candidate path that exists on disk is used.
func Locate() (string, error) {
	for _, dir := range profileCandidates() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", ErrProfileNotFound
}

// UserDataDir returns the directory holding profile-wide files such as
// Local State and the singleton lock. For a profile at
// ".../Brave-Browser/Default" this is ".../Brave-Browser".
func UserDataDir(profileDir string) string {
	return filepath.Dir(profileDir)
}

// LocalStatePath returns the path to the Local State file that stores the
// wrapped master key on Windows.
func LocalStatePath(profileDir string) string {
	return filepath.Join(UserDataDir(profileDir), "Local State")
}

// Well-known file names inside a Brave profile directory.
const (
	LoginDataFile   = "Login Data"
	HistoryFile     = "History"
	BookmarksFile   = "Bookmarks"
	PreferencesFile = "Preferences"
)
