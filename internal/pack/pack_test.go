package pack

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func packFixture(t *testing.T, payloads map[Kind][]byte, passphrase string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Pack(payloads, passphrase, &buf); err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	return buf.Bytes()
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	payloads := map[Kind][]byte{
		KindPasswords: []byte(`[{"url":"https://a.example"}]`),
		KindHistory:   []byte(`[]`),
		KindBookmarks: []byte(`{"roots":{}}`),
	}
	data := packFixture(t, payloads, "correct horse")

	pkg, err := Unpack(bytes.NewReader(data), int64(len(data)), "correct horse")
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if len(pkg.Damaged) != 0 {
		t.Fatalf("expected no damaged kinds, got %v", pkg.Damaged)
	}
	for kind, want := range payloads {
		if got := pkg.Payloads[kind]; !bytes.Equal(got, want) {
			t.Errorf("payload %s mismatch: got %q want %q", kind, got, want)
		}
	}
	if pkg.Manifest.FormatVersion != FormatVersion {
		t.Errorf("unexpected format version %d", pkg.Manifest.FormatVersion)
	}
}

func TestUnpack_WrongPassphrase(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{KindPasswords: []byte("x")}, "right")

	_, err := Unpack(bytes.NewReader(data), int64(len(data)), "wrong")
	if !errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestPack_EmptyPayloads(t *testing.T) {
	var buf bytes.Buffer
	if err := Pack(nil, "pass", &buf); err == nil {
		t.Fatal("expected error for empty payloads")
	}
}

func TestReadManifest_NoPassphraseNeeded(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{KindHistory: []byte("h"), KindPrefs: []byte("p")}, "secret")

	manifest, err := ReadManifest(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read manifest failed: %v", err)
	}
	if len(manifest.Kinds) != 2 {
		t.Fatalf("expected 2 kinds, got %v", manifest.Kinds)
	}
	if manifest.KDF.Algo != "argon2id" {
		t.Errorf("unexpected KDF algo %q", manifest.KDF.Algo)
	}
	if len(manifest.KDFSalt) != 16 {
		t.Errorf("unexpected salt length %d", len(manifest.KDFSalt))
	}
}

// rewriteZip rebuilds the archive, passing each entry through mutate.
// A nil return drops the entry.
func rewriteZip(t *testing.T, data []byte, mutate func(name string, content []byte) []byte) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		content = mutate(f.Name, content)
		if content == nil {
			continue
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUnpack_NewerVersionRejectedBeforeDecryption(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{KindPasswords: []byte("x")}, "secret")

	data = rewriteZip(t, data, func(name string, content []byte) []byte {
		if name != "manifest.json" {
			return content
		}
		var m Manifest
		if err := json.Unmarshal(content, &m); err != nil {
			t.Fatal(err)
		}
		m.FormatVersion = FormatVersion + 1
		out, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		return out
	})

	// Correct passphrase: the version gate must fire anyway, before any
	// decryption is attempted.
	_, err := Unpack(bytes.NewReader(data), int64(len(data)), "secret")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestUnpack_UnknownKDFRejected(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{KindPasswords: []byte("x")}, "secret")

	data = rewriteZip(t, data, func(name string, content []byte) []byte {
		if name != "manifest.json" {
			return content
		}
		var m Manifest
		if err := json.Unmarshal(content, &m); err != nil {
			t.Fatal(err)
		}
		m.KDF.Algo = "scrypt"
		out, err := json.Marshal(m)
		if err != nil {
			t.Fatal(err)
		}
		return out
	})

	_, err := Unpack(bytes.NewReader(data), int64(len(data)), "secret")
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestUnpack_DamagedKindDoesNotTakeDownOthers(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{
		KindPasswords: []byte("important"),
		KindHistory:   []byte("visits"),
	}, "secret")

	data = rewriteZip(t, data, func(name string, content []byte) []byte {
		if name == "history.bin" {
			content[len(content)-1] ^= 0x01
		}
		return content
	})

	pkg, err := Unpack(bytes.NewReader(data), int64(len(data)), "secret")
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if _, ok := pkg.Damaged[KindHistory]; !ok {
		t.Fatal("expected history to be reported damaged")
	}
	if got := pkg.Payloads[KindPasswords]; string(got) != "important" {
		t.Errorf("undamaged kind should still decode, got %q", got)
	}
	if _, ok := pkg.Payloads[KindHistory]; ok {
		t.Error("damaged kind must not appear in payloads")
	}
}

func TestUnpack_MissingPayloadEntryReportedDamaged(t *testing.T) {
	data := packFixture(t, map[Kind][]byte{
		KindPasswords: []byte("important"),
		KindPrefs:     []byte("{}"),
	}, "secret")

	data = rewriteZip(t, data, func(name string, content []byte) []byte {
		if name == "prefs.bin" {
			return nil
		}
		return content
	})

	pkg, err := Unpack(bytes.NewReader(data), int64(len(data)), "secret")
	if err != nil {
		t.Fatalf("unpack failed: %v", err)
	}
	if _, ok := pkg.Damaged[KindPrefs]; !ok {
		t.Fatal("expected prefs to be reported damaged")
	}
}

func TestUnpack_NotAZip(t *testing.T) {
	junk := []byte("definitely not a zip archive")
	_, err := Unpack(bytes.NewReader(junk), int64(len(junk)), "secret")
	if err == nil {
		t.Fatal("expected error for junk input")
	}
}

func TestGeneratePassphrase(t *testing.T) {
	a, err := GeneratePassphrase()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GeneratePassphrase()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two generated passphrases are identical")
	}
	groups := strings.Split(a, "-")
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %q", a)
	}
	for _, g := range groups {
		if len(g) != 5 {
			t.Errorf("group %q is not 5 characters", g)
		}
	}
}
