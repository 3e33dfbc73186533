package logindata

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrCorruptStore means the credential store or one of its envelopes could
// not be decoded: bad scheme prefix, truncated blob, failed authentication
// tag, or broken table schema.
var ErrCorruptStore = errors.New("credential store is corrupt")

// Scheme identifies the encryption envelope version of a stored password.
type Scheme uint8

const (
	// SchemeLegacy is the pre-v80 static-key scheme: AES-128-CBC with the
	// fixed 16-space IV, decrypted directly with the resolved master key.
	SchemeLegacy Scheme = 0
	// SchemeGCM is the "v10" AEAD scheme: AES-GCM with a 12-byte per-record
	// nonce and a 16-byte authentication tag.
	SchemeGCM Scheme = 1
	// SchemeKeyringGCM is the "v11" AEAD scheme used when the key comes from
	// the OS keyring. Envelope layout is identical to SchemeGCM.
	SchemeKeyringGCM Scheme = 2
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

var schemePrefix = map[Scheme][]byte{
	SchemeGCM:        []byte("v10"),
	SchemeKeyringGCM: []byte("v11"),
}

// Envelope is the parsed encryption envelope of one stored password.
type Envelope struct {
	Scheme     Scheme
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// ParseEnvelope splits a stored password_value blob into its envelope parts.
// A "vNN" prefix that maps to no known scheme is a hard decode failure, not
// a silent skip.
func ParseEnvelope(blob []byte) (*Envelope, error) {
	if len(blob) >= 3 && blob[0] == 'v' && isDigit(blob[1]) && isDigit(blob[2]) {
		var scheme Scheme
		switch {
		case bytes.Equal(blob[:3], schemePrefix[SchemeGCM]):
			scheme = SchemeGCM
		case bytes.Equal(blob[:3], schemePrefix[SchemeKeyringGCM]):
			scheme = SchemeKeyringGCM
		default:
			return nil, fmt.Errorf("%w: unknown envelope scheme %q", ErrCorruptStore, blob[:3])
		}
		if len(blob) < 3+gcmNonceSize+gcmTagSize {
			return nil, fmt.Errorf("%w: envelope too short for scheme %q", ErrCorruptStore, blob[:3])
		}
		body := blob[3:]
		return &Envelope{
			Scheme:     scheme,
			Nonce:      body[:gcmNonceSize],
			Ciphertext: body[gcmNonceSize : len(body)-gcmTagSize],
			Tag:        body[len(body)-gcmTagSize:],
		}, nil
	}
	return &Envelope{Scheme: SchemeLegacy, Ciphertext: blob}, nil
}

// decoders maps each known scheme to its decryption routine. Adding a new
// browser scheme means adding one entry here plus its prefix above.
var decoders = map[Scheme]func(*Envelope, []byte) ([]byte, error){
	SchemeLegacy:     decryptLegacy,
	SchemeGCM:        decryptGCM,
	SchemeKeyringGCM: decryptGCM,
}

// Open decrypts the envelope with the given master key. A failed
// authentication tag is reported as ErrCorruptStore.
func Open(env *Envelope, key []byte) ([]byte, error) {
	decode, ok := decoders[env.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for scheme %d", ErrCorruptStore, env.Scheme)
	}
	return decode(env, key)
}

// Seal encrypts plaintext into a fresh SchemeGCM envelope blob under the
// given master key. A new random nonce is drawn on every call; nonce reuse
// under the same key is forbidden.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	prefix := schemePrefix[SchemeGCM]
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(sealed))
	out = append(out, prefix...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

func decryptGCM(env *Envelope, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)
	plaintext, err := gcm.Open(nil, env.Nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: envelope authentication failed", ErrCorruptStore)
	}
	return plaintext, nil
}

// decryptLegacy handles scheme 0 blobs: AES-128-CBC with the fixed
// 16-space IV Chromium used before the AEAD schemes, PKCS#7 padded.
func decryptLegacy(env *Envelope, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ct := env.Ciphertext
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: legacy envelope length %d not a block multiple", ErrCorruptStore, len(ct))
	}

	iv := bytes.Repeat([]byte{' '}, aes.BlockSize)
	plaintext := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ct)

	padLen := int(plaintext[len(plaintext)-1])
	if padLen < 1 || padLen > aes.BlockSize || padLen > len(plaintext) {
		return nil, fmt.Errorf("%w: invalid legacy envelope padding", ErrCorruptStore)
	}
	return plaintext[:len(plaintext)-padLen], nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
