// Package history reads and merges the Chromium "History" SQLite store.
// Export reads the urls table from a safe copy into a JSON payload for the
// portable package; Import merges that payload into a destination store,
// summing visit counts and keeping the newer visit time for URLs already
// present.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// chromeEpochOffsetSeconds is the number of seconds between the Windows NT
// epoch (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const chromeEpochOffsetSeconds int64 = 11_644_473_600

func chromeToTime(usec int64) time.Time {
	if usec == 0 {
		return time.Time{}
	}
	return time.Unix(usec/1_000_000-chromeEpochOffsetSeconds, 0).UTC()
}

func timeToChrome(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return (t.Unix() + chromeEpochOffsetSeconds) * 1_000_000
}

// Entry is one visited URL in the portable payload.
type Entry struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	VisitCount int       `json:"visit_count"`
	LastVisit  time.Time `json:"last_visit"`
}

// Export reads the urls table at dbPath (a safe copy, opened read-only) and
// returns the entries as a JSON payload, newest first. When sinceDays > 0
// only entries visited within the last sinceDays days are included.
func Export(dbPath string, sinceDays int) ([]byte, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open history store: %w", err)
	}
	defer db.Close()

	query := `SELECT url, title, visit_count, last_visit_time FROM urls`
	var args []interface{}
	if sinceDays > 0 {
		threshold := time.Now().AddDate(0, 0, -sinceDays)
		query += ` WHERE last_visit_time > ?`
		args = append(args, timeToChrome(threshold))
	}
	query += ` ORDER BY last_visit_time DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("cannot query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			url, title string
			count      int
			lastVisit  int64
		)
		if err := rows.Scan(&url, &title, &count, &lastVisit); err != nil {
			return nil, fmt.Errorf("cannot scan history row: %w", err)
		}
		entries = append(entries, Entry{
			URL:        url,
			Title:      title,
			VisitCount: count,
			LastVisit:  chromeToTime(lastVisit),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot iterate history rows: %w", err)
	}

	return json.Marshal(entries)
}

// urlsSchemaDDL creates the urls table of a fresh History store with the
// columns Chromium expects.
const urlsSchemaDDL = `CREATE TABLE IF NOT EXISTS urls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url LONGVARCHAR,
    title LONGVARCHAR,
    visit_count INTEGER DEFAULT 0 NOT NULL,
    typed_count INTEGER DEFAULT 0 NOT NULL,
    last_visit_time INTEGER NOT NULL,
    hidden INTEGER DEFAULT 0 NOT NULL
)`

// Import merges a JSON history payload into the destination store at
// dbPath, creating the store if it does not exist. Existing URLs get their
// visit counts summed and keep the newer visit time; new URLs are inserted.
// The whole merge runs in one transaction.
func Import(payload []byte, dbPath string) (added, merged int, err error) {
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return 0, 0, fmt.Errorf("history payload is not valid JSON: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot open destination history store: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(urlsSchemaDDL); err != nil {
		return 0, 0, fmt.Errorf("cannot ensure urls schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, 0, err
	}

	for _, e := range entries {
		var (
			id        int64
			count     int
			lastVisit int64
		)
		row := tx.QueryRow(`SELECT id, visit_count, last_visit_time FROM urls WHERE url = ?`, e.URL)
		switch scanErr := row.Scan(&id, &count, &lastVisit); scanErr {
		case nil:
			newLast := lastVisit
			if incoming := timeToChrome(e.LastVisit); incoming > newLast {
				newLast = incoming
			}
			_, err = tx.Exec(`UPDATE urls SET visit_count = ?, last_visit_time = ? WHERE id = ?`,
				count+e.VisitCount, newLast, id)
			if err == nil {
				merged++
			}
		case sql.ErrNoRows:
			_, err = tx.Exec(`INSERT INTO urls (url, title, visit_count, last_visit_time) VALUES (?, ?, ?, ?)`,
				e.URL, e.Title, e.VisitCount, timeToChrome(e.LastVisit))
			if err == nil {
				added++
			}
		default:
			err = scanErr
		}
		if err != nil {
			tx.Rollback()
			return 0, 0, fmt.Errorf("cannot merge history row for %s: %w", e.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return added, merged, nil
}
