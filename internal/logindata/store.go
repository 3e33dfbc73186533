package logindata

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Credential is one row of the logins table with its password still inside
// the encryption envelope. Identity key is (OriginURL, Username).
type Credential struct {
	OriginURL string
	Username  string
	// Envelope is the raw encrypted password_value blob. Only the envelope
	// changes across the migration pipeline; the record itself is immutable.
	Envelope []byte
	Created  time.Time
	LastUsed time.Time
}

// Decoded pairs a credential with its decrypted password.
// The Password field must never be logged or written to disk.
type Decoded struct {
	Credential
	Password string
}

// RecordError reports a single row that failed to decode while the rest of
// the store decoded fine.
type RecordError struct {
	OriginURL string
	Username  string
	Err       error
}

func (r RecordError) Error() string {
	return fmt.Sprintf("record %s (%s): %v", r.OriginURL, r.Username, r.Err)
}

func (r RecordError) Unwrap() error { return r.Err }

// DecodeStore reads every row of the logins table at dbPath and decrypts the
// password envelopes with the given master key.
//
// The store is opened read-only and never mutated; callers pass a safe copy
// (profile.Files.SafeCopy) so the live browser store is not touched at all.
// Each call re-opens the store, so the row sequence restarts per call.
//
// Rows whose envelope fails authentication are collected as RecordErrors and
// do not stop the remaining rows from decoding. An unknown envelope scheme
// aborts the whole decode with ErrCorruptStore.
func DecodeStore(dbPath string, key []byte) ([]Decoded, []RecordError, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open credential store: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`
        SELECT origin_url, username_value, password_value, date_created, date_last_used
        FROM logins ORDER BY date_created
    `)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	defer rows.Close()

	var decoded []Decoded
	var corrupt []RecordError
	for rows.Next() {
		var (
			origin, username  string
			blob              []byte
			created, lastUsed sql.NullInt64
		)
		if err := rows.Scan(&origin, &username, &blob, &created, &lastUsed); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		cred := Credential{
			OriginURL: origin,
			Username:  username,
			Envelope:  blob,
			Created:   FromChromeMicros(created.Int64),
			LastUsed:  FromChromeMicros(lastUsed.Int64),
		}
		if len(blob) == 0 {
			// Blacklisted or federated entries carry no password.
			continue
		}
		env, err := ParseEnvelope(blob)
		if err != nil {
			// Unknown scheme: hard failure, never a silent skip.
			return nil, nil, err
		}
		plaintext, err := Open(env, key)
		if err != nil {
			corrupt = append(corrupt, RecordError{OriginURL: origin, Username: username, Err: err})
			continue
		}
		decoded = append(decoded, Decoded{Credential: cred, Password: string(plaintext)})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	return decoded, corrupt, nil
}

// EncodeEntry rewraps a plaintext password into a credential carrying a
// fresh SchemeGCM envelope under the given master key. Used only at final
// import against the destination store.
func EncodeEntry(originURL, username, password string, key []byte, now time.Time) (Credential, error) {
	blob, err := Seal([]byte(password), key)
	if err != nil {
		return Credential{}, fmt.Errorf("cannot seal envelope for %s: %w", originURL, err)
	}
	return Credential{
		OriginURL: originURL,
		Username:  username,
		Envelope:  blob,
		Created:   now,
		LastUsed:  now,
	}, nil
}

// SchemaDDL creates the logins table of a fresh Login Data store, matching
// the Chromium schema so the browser accepts the file as its own.
const SchemaDDL = `CREATE TABLE IF NOT EXISTS logins (
    id INTEGER PRIMARY KEY,
    origin_url TEXT NOT NULL,
    action_url TEXT,
    username_element TEXT,
    username_value TEXT,
    password_element TEXT,
    password_value BLOB,
    submit_element TEXT,
    signon_realm TEXT NOT NULL,
    date_created INTEGER NOT NULL,
    blacklisted_by_user INTEGER NOT NULL,
    scheme INTEGER NOT NULL,
    password_type INTEGER,
    times_used INTEGER,
    form_data BLOB,
    display_name TEXT,
    icon_url TEXT,
    federation_url TEXT,
    skip_zero_click INTEGER,
    generation_upload_status INTEGER,
    possible_username_pairs BLOB,
    date_last_used INTEGER,
    moving_blocked_for BLOB,
    date_password_modified INTEGER
)`
