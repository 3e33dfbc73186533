package logindata

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"testing"
)

var testKey = []byte("0123456789abcdef") // 16 bytes, AES-128

func TestSealOpen_RoundTrip(t *testing.T) {
	plaintext := []byte("hunter2")

	blob, err := Seal(plaintext, testKey)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if !bytes.HasPrefix(blob, []byte("v10")) {
		t.Fatalf("expected v10 prefix, got %q", blob[:3])
	}

	env, err := ParseEnvelope(blob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if env.Scheme != SchemeGCM {
		t.Errorf("expected SchemeGCM, got %d", env.Scheme)
	}
	if len(env.Nonce) != 12 || len(env.Tag) != 16 {
		t.Errorf("unexpected envelope split: nonce=%d tag=%d", len(env.Nonce), len(env.Tag))
	}

	got, err := Open(env, testKey)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	a, err := Seal([]byte("x"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Seal([]byte("x"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a[3:15], b[3:15]) {
		t.Error("two seals produced the same nonce")
	}
}

func TestParseEnvelope_V11(t *testing.T) {
	blob, err := Seal([]byte("secret"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	copy(blob, "v11")

	env, err := ParseEnvelope(blob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if env.Scheme != SchemeKeyringGCM {
		t.Fatalf("expected SchemeKeyringGCM, got %d", env.Scheme)
	}
	got, err := Open(env, testKey)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(got) != "secret" {
		t.Errorf("got %q", got)
	}
}

func TestParseEnvelope_UnknownSchemeIsHardFailure(t *testing.T) {
	_, err := ParseEnvelope([]byte("v99aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore for unknown scheme, got %v", err)
	}
}

func TestParseEnvelope_TruncatedGCM(t *testing.T) {
	_, err := ParseEnvelope([]byte("v10short"))
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore for truncated envelope, got %v", err)
	}
}

func TestParseEnvelope_NoPrefixIsLegacy(t *testing.T) {
	env, err := ParseEnvelope([]byte{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if env.Scheme != SchemeLegacy {
		t.Errorf("expected SchemeLegacy, got %d", env.Scheme)
	}
}

func TestOpen_TamperedTagFailsAuthentication(t *testing.T) {
	blob, err := Seal([]byte("password"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	blob[len(blob)-1] ^= 0x01

	env, err := ParseEnvelope(blob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Open(env, testKey)
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore for flipped tag bit, got %v", err)
	}
}

func TestOpen_WrongKeyFailsAuthentication(t *testing.T) {
	blob, err := Seal([]byte("password"), testKey)
	if err != nil {
		t.Fatal(err)
	}
	env, err := ParseEnvelope(blob)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Open(env, []byte("fedcba9876543210"))
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore for wrong key, got %v", err)
	}
}

// sealLegacy builds a scheme 0 blob the way pre-v80 Chromium did:
// AES-128-CBC, 16-space IV, PKCS#7 padding.
func sealLegacy(t *testing.T, plaintext, key []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append(append([]byte{}, plaintext...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)
	iv := bytes.Repeat([]byte{' '}, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out
}

func TestOpen_LegacyCBC(t *testing.T) {
	blob := sealLegacy(t, []byte("old password"), testKey)

	env, err := ParseEnvelope(blob)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if env.Scheme != SchemeLegacy {
		t.Fatalf("expected SchemeLegacy, got %d", env.Scheme)
	}
	got, err := Open(env, testKey)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(got) != "old password" {
		t.Errorf("got %q", got)
	}
}

func TestOpen_LegacyBadLength(t *testing.T) {
	env := &Envelope{Scheme: SchemeLegacy, Ciphertext: []byte("not a block multiple")}
	_, err := Open(env, testKey)
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore, got %v", err)
	}
}
