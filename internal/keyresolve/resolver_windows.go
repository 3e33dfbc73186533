//go:build windows

package keyresolve

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/bravevault/bravevault/internal/profile"
)

type dpapiResolver struct{}

func newPlatformResolver() Resolver {
	return &dpapiResolver{}
}

// ResolveMasterKey reads the DPAPI-wrapped key from the profile's Local
// State file and unwraps it with CryptUnprotectData. The unwrap only
// succeeds for the same OS user that created the profile.
func (r *dpapiResolver) ResolveMasterKey(profileDir string) ([]byte, error) {
	wrapped, err := readWrappedKey(profile.LocalStatePath(profileDir))
	if err != nil {
		return nil, err
	}

	in := windows.DataBlob{
		Size: uint32(len(wrapped)),
		Data: &wrapped[0],
	}
	var out windows.DataBlob
	if err := windows.CryptUnprotectData(&in, nil, nil, 0, nil, 0, &out); err != nil {
		return nil, fmt.Errorf("%w: DPAPI unwrap failed (wrong OS user?): %v", ErrKeyUnavailable, err)
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))

	key := make([]byte, out.Size)
	copy(key, unsafe.Slice(out.Data, out.Size))
	return key, nil
}
