// Package reconcile merges incoming credential records into a destination
// Login Data store. Planning computes a diff keyed on (origin_url,
// username); applying is atomic: the destination is backed up first and
// restored byte-for-byte if anything fails partway, so no partial write is
// ever left visible.
package reconcile

import (
	"fmt"
	"os"
	"time"

	"github.com/bravevault/bravevault/internal/logindata"
)

// Action classifies one incoming record against the destination store.
type Action int

const (
	// ActionInsert: no destination record with this key exists.
	ActionInsert Action = iota
	// ActionSkipDuplicate: destination has the same key and the same
	// password; nothing to do.
	ActionSkipDuplicate
	// ActionConflict: destination has the same key but a different
	// password. The destination value is kept; the conflict is reported for
	// operator review and never silently overwritten.
	ActionConflict
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionSkipDuplicate:
		return "skip-duplicate"
	case ActionConflict:
		return "conflict"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Incoming is one credential arriving from a portable package.
// Password must never be logged or written to disk.
type Incoming struct {
	OriginURL string
	Username  string
	Password  string
	Created   time.Time
	LastUsed  time.Time
}

// Entry is one planned operation.
type Entry struct {
	Incoming
	Action Action
}

// Plan is the computed diff between a destination store and a set of
// incoming records.
type Plan struct {
	Entries []Entry
}

// Counts returns the number of entries per action.
func (p *Plan) Counts() (inserts, skips, conflicts int) {
	for _, e := range p.Entries {
		switch e.Action {
		case ActionInsert:
			inserts++
		case ActionSkipDuplicate:
			skips++
		case ActionConflict:
			conflicts++
		}
	}
	return
}

type credKey struct {
	originURL string
	username  string
}

// PlanImport diffs incoming records against the destination store at
// dbPath, decrypting existing rows with the destination master key. A
// missing destination store plans everything as insert. Destination rows
// whose envelope fails to decode are treated as conflicts: their password
// cannot be compared, and an unreadable row must never be overwritten.
func PlanImport(dbPath string, incoming []Incoming, key []byte) (*Plan, error) {
	existing := make(map[credKey]string)
	unreadable := make(map[credKey]bool)

	if _, err := os.Stat(dbPath); err == nil {
		decoded, corrupt, err := logindata.DecodeStore(dbPath, key)
		if err != nil {
			return nil, fmt.Errorf("cannot read destination store: %w", err)
		}
		for _, d := range decoded {
			existing[credKey{d.OriginURL, d.Username}] = d.Password
		}
		for _, c := range corrupt {
			unreadable[credKey{c.OriginURL, c.Username}] = true
		}
	}

	plan := &Plan{Entries: make([]Entry, 0, len(incoming))}
	for _, in := range incoming {
		k := credKey{in.OriginURL, in.Username}
		entry := Entry{Incoming: in}
		switch {
		case unreadable[k]:
			entry.Action = ActionConflict
		case in.Password == existing[k] && hasKey(existing, k):
			entry.Action = ActionSkipDuplicate
		case hasKey(existing, k):
			entry.Action = ActionConflict
		default:
			entry.Action = ActionInsert
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

func hasKey(m map[credKey]string, k credKey) bool {
	_, ok := m[k]
	return ok
}
