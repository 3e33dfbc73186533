//go:build windows

package profile

import (
	"os"
	"path/filepath"
)

// profileCandidatesForLocalAppData returns Brave profile directory candidates
// rooted at the given %LOCALAPPDATA% directory.
// This is the testable variant; profileCandidates calls it with the real value.
func profileCandidatesForLocalAppData(localAppData string) []string {
	if localAppData == "" {
		return nil
	}
	return []string{
		filepath.Join(localAppData, "BraveSoftware", "Brave-Browser", "User Data", "Default"),
	}
}

// profileCandidates returns candidates rooted at the real %LOCALAPPDATA%.
func profileCandidates() []string {
	return profileCandidatesForLocalAppData(os.Getenv("LOCALAPPDATA"))
}
