//go:build unix

package profile

import (
	"os"
	"path/filepath"
	"runtime"
)

// profileCandidatesForHome returns Brave profile directory candidates rooted
// at the given homeDir, most common install first.
// This is the testable variant; profileCandidates calls it with the real home.
func profileCandidatesForHome(homeDir string) []string {
	if runtime.GOOS == "darwin" {
		return []string{
			filepath.Join(homeDir, "Library", "Application Support", "BraveSoftware", "Brave-Browser", "Default"),
		}
	}
	return []string{
		filepath.Join(homeDir, ".config", "BraveSoftware", "Brave-Browser", "Default"),
		filepath.Join(homeDir, ".var", "app", "com.brave.Browser", "config", "BraveSoftware", "Brave-Browser", "Default"),
		filepath.Join(homeDir, "snap", "brave", "current", ".config", "BraveSoftware", "Brave-Browser", "Default"),
	}
}

// profileCandidates returns candidates rooted at the real user home directory.
func profileCandidates() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return profileCandidatesForHome(homeDir)
}
