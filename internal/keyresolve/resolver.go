// Package keyresolve obtains the symmetric master key protecting a Brave
// profile's credential store, using the OS-appropriate secret-protection
// mechanism: DPAPI-wrapped key blobs on Windows, the user keyring on Linux
// and macOS. The resolved key lives only in process memory for the duration
// of one operation and is never serialized.
package keyresolve

import "errors"

// ErrKeyUnavailable means the OS secret store could not produce the master
// key: Local State missing or malformed, keyring entry absent, or keyring
// locked. Launching Brave once as this OS user creates the key material.
var ErrKeyUnavailable = errors.New("master key unavailable, launch Brave once as this user and retry")

// Resolver obtains the master key for a profile directory.
// Implementations are read-only against the OS secret store.
type Resolver interface {
	ResolveMasterKey(profileDir string) ([]byte, error)
}

// NewResolver returns the resolver for the OS this process runs on.
// Selection happens once at startup; the pipeline only sees the interface.
func NewResolver() Resolver {
	return newPlatformResolver()
}
