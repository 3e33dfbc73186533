// Package migrate wires the migration pipeline together: key resolver →
// credential codec → portable package on export, and portable package →
// credential codec → import reconciler on import. All configuration travels
// in explicit options structs so multiple operations can run and be tested
// in one process.
package migrate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bravevault/bravevault/internal/keyresolve"
	"github.com/bravevault/bravevault/internal/profile"
	"github.com/bravevault/bravevault/pkg/logger"
)

// Options carries the collaborators shared by export and import.
// Zero-value fields get production defaults.
type Options struct {
	// ProfileDir overrides profile auto-detection when non-empty.
	ProfileDir string
	// Resolver obtains the local master key. Defaults to the platform
	// resolver; tests inject a static one.
	Resolver keyresolve.Resolver
	// Files provides the file collaborators. Defaults to the OS filesystem.
	Files *profile.Files
	// Log receives progress and warnings. Defaults to a silent logger.
	Log logger.Logger
	// Progress, when set, is called after each credential record is
	// processed with (done, total). Drives the CLI progress bar.
	Progress func(done, total int)
}

func (o *Options) defaults() {
	if o.Resolver == nil {
		o.Resolver = keyresolve.NewResolver()
	}
	if o.Files == nil {
		o.Files = profile.NewFiles()
	}
	if o.Log == nil {
		o.Log = logger.NewNopLogger()
	}
}

// resolveProfile picks the profile directory and verifies the browser does
// not hold it locked. Every operation starts here.
func (o *Options) resolveProfile() (string, error) {
	dir := o.ProfileDir
	if dir == "" {
		located, err := profile.Locate()
		if err != nil {
			return "", err
		}
		dir = located
	}
	if err := profile.CheckLock(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// portableCredential is the JSON shape of one credential inside the
// package's password payload. The payload as a whole is AEAD-sealed under
// the package key; individual fields are plaintext only inside that
// envelope.
type portableCredential struct {
	URL      string    `json:"url"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	Created  time.Time `json:"created,omitempty"`
	LastUsed time.Time `json:"last_used,omitempty"`
}

func marshalCredentials(creds []portableCredential) ([]byte, error) {
	data, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("cannot encode credentials payload: %w", err)
	}
	return data, nil
}

func unmarshalCredentials(payload []byte) ([]portableCredential, error) {
	var creds []portableCredential
	if err := json.Unmarshal(payload, &creds); err != nil {
		return nil, fmt.Errorf("credentials payload is not valid JSON: %w", err)
	}
	return creds, nil
}
