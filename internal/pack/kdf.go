package pack

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// KDFParams records the slow key-derivation parameters in the package
// manifest so a reader can re-derive the data-encryption key. The salt is
// random per package; the derived key never appears anywhere in the archive.
type KDFParams struct {
	Algo        string `json:"algo"`
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

const (
	kdfAlgoArgon2id = "argon2id"

	kdfSaltSize = 16
	kdfKeySize  = 32

	defaultMemory      = 64 * 1024 // KiB
	defaultIterations  = 3
	defaultParallelism = 1
)

func defaultKDFParams() KDFParams {
	return KDFParams{
		Algo:        kdfAlgoArgon2id,
		Memory:      defaultMemory,
		Iterations:  defaultIterations,
		Parallelism: defaultParallelism,
	}
}

// deriveKey stretches the passphrase into the package data-encryption key.
func deriveKey(passphrase string, salt []byte, params KDFParams) []byte {
	return argon2.IDKey([]byte(passphrase), salt, params.Iterations, params.Memory, params.Parallelism, kdfKeySize)
}

// newSalt draws a fresh random KDF salt.
func newSalt() ([]byte, error) {
	salt := make([]byte, kdfSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("cannot generate KDF salt: %w", err)
	}
	return salt, nil
}

// GeneratePassphrase produces a random passphrase in dash-separated base32
// groups ("ABCDE-FGHIJ-KLMNO-PQRST"). Used when the operator supplies none;
// it is shown exactly once and never stored.
func GeneratePassphrase() (string, error) {
	raw := make([]byte, 13)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("cannot generate passphrase: %w", err)
	}
	s := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	var groups []string
	for len(s) >= 5 {
		groups = append(groups, s[:5])
		s = s[5:]
	}
	return strings.Join(groups, "-"), nil
}
