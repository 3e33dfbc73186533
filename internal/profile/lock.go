package profile

import "errors"

// ErrProfileLocked means the browser currently holds the profile open.
// Store contents are not trustworthy while the browser runs, so every
// export/import operation probes the lock before touching any store.
var ErrProfileLocked = errors.New("brave is running and holds the profile locked, close Brave and retry")

// CheckLock returns ErrProfileLocked if the browser's lock indicator is
// present in the user-data directory of the given profile. The probe never
// attempts to acquire the lock itself.
func CheckLock(profileDir string) error {
	if lockIndicatorPresent(UserDataDir(profileDir)) {
		return ErrProfileLocked
	}
	return nil
}
