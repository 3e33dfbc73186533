//go:build unix

package profile

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestProfileCandidatesForHome(t *testing.T) {
	candidates := profileCandidatesForHome("/home/user")
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	for _, c := range candidates {
		if !strings.Contains(c, filepath.Join("BraveSoftware", "Brave-Browser", "Default")) {
			t.Errorf("candidate %q does not point at a Brave default profile", c)
		}
		if !strings.HasPrefix(c, "/home/user") {
			t.Errorf("candidate %q not rooted at the given home", c)
		}
	}
	if runtime.GOOS != "darwin" && len(candidates) < 3 {
		t.Errorf("expected flatpak and snap fallbacks on linux, got %v", candidates)
	}
}

func TestLocate_NotFound(t *testing.T) {
	// Candidates are rooted at the real home; on CI machines without Brave
	// installed Locate must fail with the sentinel.
	if _, err := Locate(); err != nil && err != ErrProfileNotFound {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}
