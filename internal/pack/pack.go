// Package pack implements the portable package format: a single zip archive
// carrying a cleartext manifest plus one independently AEAD-sealed payload
// per exported data kind. The data-encryption key is derived from an
// operator passphrase with Argon2id, never from either OS's master key, so
// the archive can travel between machines and survive offline brute-force
// attempts if intercepted.
package pack

import (
	"archive/zip"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// Kind names one exported data category inside a package.
type Kind string

const (
	KindPasswords Kind = "passwords"
	KindHistory   Kind = "history"
	KindBookmarks Kind = "bookmarks"
	KindPrefs     Kind = "prefs"
)

// FormatVersion is the newest package layout this build can read and the
// version it always writes. Readers fail closed on anything newer.
const FormatVersion = 1

var (
	// ErrBadPassphrase means the KDF output failed the package integrity
	// check: wrong passphrase, or a tampered check blob.
	ErrBadPassphrase = errors.New("wrong passphrase for this package")

	// ErrUnsupportedVersion means the package was written by a newer
	// bravevault; the layout cannot be guessed at, so reading fails before
	// any decryption is attempted.
	ErrUnsupportedVersion = errors.New("package format version is newer than this build supports")
)

// Manifest is the cleartext package header. It must never contain key
// material or plaintext secrets.
type Manifest struct {
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`
	Kinds         []Kind    `json:"kinds"`
	KDFSalt       []byte    `json:"kdf_salt"`
	KDF           KDFParams `json:"kdf"`
}

// Package is a decoded portable package. Kinds that failed to decrypt while
// the rest of the archive decoded fine are reported in Damaged.
type Package struct {
	Manifest Manifest
	Payloads map[Kind][]byte
	Damaged  map[Kind]error
}

const (
	manifestName = "manifest.json"
	checkName    = "check.bin"

	nonceSize = 12
)

// checkPlaintext is sealed under the derived key at pack time; a failed open
// at unpack time distinguishes a wrong passphrase from per-kind corruption.
var checkPlaintext = []byte("bravevault format 1 passphrase check")

// Pack seals the given payloads under a passphrase-derived key and writes
// the package archive to w. Each kind is sealed independently so partial
// corruption in transit cannot take down the other kinds.
func Pack(payloads map[Kind][]byte, passphrase string, w io.Writer) error {
	if len(payloads) == 0 {
		return errors.New("nothing to pack")
	}
	salt, err := newSalt()
	if err != nil {
		return err
	}
	params := defaultKDFParams()
	key := deriveKey(passphrase, salt, params)

	kinds := make([]Kind, 0, len(payloads))
	for kind := range payloads {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	manifest := Manifest{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Kinds:         kinds,
		KDFSalt:       salt,
		KDF:           params,
	}

	zw := zip.NewWriter(w)

	header, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode manifest: %w", err)
	}
	if err := writeZipEntry(zw, manifestName, header); err != nil {
		return err
	}

	check, err := sealBlob(checkPlaintext, key)
	if err != nil {
		return err
	}
	if err := writeZipEntry(zw, checkName, check); err != nil {
		return err
	}

	for _, kind := range kinds {
		sealed, err := sealBlob(payloads[kind], key)
		if err != nil {
			return err
		}
		if err := writeZipEntry(zw, payloadName(kind), sealed); err != nil {
			return err
		}
	}

	return zw.Close()
}

// ReadManifest decodes only the cleartext header of a package. No passphrase
// needed, nothing is decrypted.
func ReadManifest(r io.ReaderAt, size int64) (*Manifest, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a bravevault package: %w", err)
	}
	raw, err := readZipEntry(zr, manifestName)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("package manifest is not valid JSON: %w", err)
	}
	return &manifest, nil
}

// Unpack opens a package with the given passphrase. The format version is
// gated before any decryption; a failed passphrase check aborts with
// ErrBadPassphrase before any payload is touched. Kinds whose payload fails
// to open afterwards are collected in Package.Damaged instead of failing the
// whole archive.
func Unpack(r io.ReaderAt, size int64, passphrase string) (*Package, error) {
	manifest, err := ReadManifest(r, size)
	if err != nil {
		return nil, err
	}
	if manifest.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: package is version %d, this build reads up to %d",
			ErrUnsupportedVersion, manifest.FormatVersion, FormatVersion)
	}
	if manifest.KDF.Algo != kdfAlgoArgon2id {
		return nil, fmt.Errorf("%w: unknown KDF %q", ErrUnsupportedVersion, manifest.KDF.Algo)
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("not a bravevault package: %w", err)
	}

	key := deriveKey(passphrase, manifest.KDFSalt, manifest.KDF)

	check, err := readZipEntry(zr, checkName)
	if err != nil {
		return nil, err
	}
	opened, err := openBlob(check, key)
	if err != nil || !bytes.Equal(opened, checkPlaintext) {
		return nil, ErrBadPassphrase
	}

	pkg := &Package{
		Manifest: *manifest,
		Payloads: make(map[Kind][]byte, len(manifest.Kinds)),
		Damaged:  make(map[Kind]error),
	}
	for _, kind := range manifest.Kinds {
		sealed, err := readZipEntry(zr, payloadName(kind))
		if err != nil {
			pkg.Damaged[kind] = err
			continue
		}
		payload, err := openBlob(sealed, key)
		if err != nil {
			pkg.Damaged[kind] = fmt.Errorf("payload for %s is damaged: %w", kind, err)
			continue
		}
		pkg.Payloads[kind] = payload
	}
	return pkg, nil
}

func payloadName(kind Kind) string {
	return string(kind) + ".bin"
}

// sealBlob encrypts data with AES-256-GCM under the package key:
// nonce || ciphertext+tag.
func sealBlob(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return append(nonce, gcm.Seal(nil, nonce, data, nil)...), nil
}

// openBlob reverses sealBlob, verifying the authentication tag.
func openBlob(sealed, key []byte) ([]byte, error) {
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed blob too short")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("cannot create package entry %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("cannot write package entry %s: %w", name, err)
	}
	return nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("package entry %s missing: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
