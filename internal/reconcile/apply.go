package reconcile

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bravevault/bravevault/internal/logindata"
	"github.com/bravevault/bravevault/internal/profile"
)

// ErrImportFailed means apply failed partway and the destination store was
// restored byte-for-byte from its pre-import backup.
var ErrImportFailed = errors.New("import failed, destination store restored from backup")

// Summary reports what an applied plan did.
type Summary struct {
	Inserted  int
	Skipped   int
	Conflicts []Entry
	// BackupPath is where the pre-import destination store was copied.
	// Empty when the destination store did not exist before import.
	BackupPath string
}

const insertLoginSQL = `INSERT INTO logins (
    origin_url, action_url, username_element, username_value,
    password_element, password_value, submit_element, signon_realm,
    date_created, blacklisted_by_user, scheme,
    date_last_used, date_password_modified
) VALUES (?, ?, '', ?, '', ?, '', ?, ?, 0, 0, ?, ?)`

// Test seam: lets tests fail the Nth write mid-transaction.
var execInsert = func(tx *sql.Tx, query string, args ...interface{}) (sql.Result, error) {
	return tx.Exec(query, args...)
}

// Apply writes the plan's insert entries into the destination store at
// dbPath, re-encrypting each password under the destination master key with
// a fresh envelope. The store is backed up before the first write; any
// failure rolls the transaction back, restores the backup, and returns
// ErrImportFailed. A missing store is created with the Chromium schema (and
// removed again on failure).
func Apply(plan *Plan, dbPath string, key []byte, files *profile.Files) (*Summary, error) {
	summary := &Summary{}
	for _, e := range plan.Entries {
		switch e.Action {
		case ActionSkipDuplicate:
			summary.Skipped++
		case ActionConflict:
			summary.Conflicts = append(summary.Conflicts, e)
		}
	}

	existed := files.Exists(dbPath)
	if existed {
		backupPath, err := files.Backup(dbPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		summary.BackupPath = backupPath
	}

	restore := func() {
		if existed {
			_ = files.Restore(summary.BackupPath, dbPath)
		} else {
			_ = files.Fs.Remove(dbPath)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		restore()
		return nil, fmt.Errorf("%w: cannot open destination store: %v", ErrImportFailed, err)
	}
	defer db.Close()

	if _, err := db.Exec(logindata.SchemaDDL); err != nil {
		restore()
		return nil, fmt.Errorf("%w: cannot ensure logins schema: %v", ErrImportFailed, err)
	}

	tx, err := db.Begin()
	if err != nil {
		restore()
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	now := time.Now().UTC()
	for _, e := range plan.Entries {
		if e.Action != ActionInsert {
			continue
		}
		created := e.Created
		if created.IsZero() {
			created = now
		}
		lastUsed := e.LastUsed
		if lastUsed.IsZero() {
			lastUsed = created
		}
		cred, err := logindata.EncodeEntry(e.OriginURL, e.Username, e.Password, key, created)
		if err != nil {
			tx.Rollback()
			restore()
			return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		_, err = execInsert(tx, insertLoginSQL,
			cred.OriginURL, cred.OriginURL, cred.Username,
			cred.Envelope, cred.OriginURL,
			logindata.ToChromeMicros(created),
			logindata.ToChromeMicros(lastUsed),
			logindata.ToChromeMicros(now),
		)
		if err != nil {
			tx.Rollback()
			restore()
			return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		summary.Inserted++
	}

	if err := tx.Commit(); err != nil {
		restore()
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	return summary, nil
}
