package keyresolve

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// dpapiPrefix marks a Local State key blob as wrapped by CryptProtectData.
var dpapiPrefix = []byte("DPAPI")

// readWrappedKey extracts the os_crypt.encrypted_key blob from a Local State
// file and strips the DPAPI prefix. The returned bytes still need an
// OS-mediated unwrap before they are usable as a key.
func readWrappedKey(localStatePath string) ([]byte, error) {
	raw, err := os.ReadFile(localStatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read Local State: %v", ErrKeyUnavailable, err)
	}

	var state struct {
		OSCrypt struct {
			EncryptedKey string `json:"encrypted_key"`
		} `json:"os_crypt"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: Local State is not valid JSON: %v", ErrKeyUnavailable, err)
	}
	if state.OSCrypt.EncryptedKey == "" {
		return nil, fmt.Errorf("%w: Local State has no os_crypt.encrypted_key", ErrKeyUnavailable)
	}

	wrapped, err := base64.StdEncoding.DecodeString(state.OSCrypt.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypted_key is not valid base64: %v", ErrKeyUnavailable, err)
	}
	if !bytes.HasPrefix(wrapped, dpapiPrefix) {
		return nil, fmt.Errorf("%w: encrypted_key has no DPAPI prefix", ErrKeyUnavailable)
	}
	return wrapped[len(dpapiPrefix):], nil
}
