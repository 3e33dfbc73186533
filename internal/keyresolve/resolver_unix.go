//go:build unix

package keyresolve

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"runtime"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"
)

// Brave derives its unix master key from a Safe Storage secret with
// PBKDF2-SHA1 over the fixed "saltysalt" salt: 1 iteration on Linux,
// 1003 on macOS, 16-byte AES key either way.
const (
	safeStorageService = "Brave Safe Storage"
	safeStorageUser    = "Brave"

	kdfSalt            = "saltysalt"
	kdfIterationsLinux = 1
	kdfIterationsMac   = 1003
	masterKeyLen       = 16

	// fallbackSecret is the hardcoded password Brave uses on Linux when no
	// keyring backend is available (os_crypt basic_text).
	fallbackSecret = "peanuts"
)

// Test seam.
var keyringGet = keyring.Get

type unixResolver struct{}

func newPlatformResolver() Resolver {
	return &unixResolver{}
}

// ResolveMasterKey looks up the Safe Storage secret in the user keyring and
// derives the master key from it. On Linux a missing keyring entry falls
// back to the hardcoded secret; any other keyring failure (locked keyring,
// no session bus) is ErrKeyUnavailable. On macOS the keychain entry is
// required.
func (r *unixResolver) ResolveMasterKey(profileDir string) ([]byte, error) {
	iterations := kdfIterationsLinux
	if runtime.GOOS == "darwin" {
		iterations = kdfIterationsMac
	}

	secret, err := keyringGet(safeStorageService, safeStorageUser)
	switch {
	case err == nil:
	case errors.Is(err, keyring.ErrNotFound) && runtime.GOOS != "darwin":
		secret = fallbackSecret
	default:
		return nil, fmt.Errorf("%w: keyring lookup failed: %v", ErrKeyUnavailable, err)
	}

	return pbkdf2.Key([]byte(secret), []byte(kdfSalt), iterations, masterKeyLen, sha1.New), nil
}
