package migrate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bravevault/bravevault/internal/history"
	"github.com/bravevault/bravevault/internal/pack"
	"github.com/bravevault/bravevault/internal/profile"
	"github.com/bravevault/bravevault/internal/reconcile"
)

// ImportOptions configures one import operation.
type ImportOptions struct {
	Options
	// Input is the package archive.
	Input io.ReaderAt
	// InputSize is the archive length in bytes.
	InputSize int64
	// Passphrase unlocks the package.
	Passphrase string

	IncludePasswords bool
	IncludeHistory   bool
	IncludeBookmarks bool
}

// ImportSummary reports what an import did.
type ImportSummary struct {
	ProfileDir string

	Inserted  int
	Skipped   int
	Conflicts []reconcile.Entry
	// BackupPath is the pre-import copy of the credential store, kept for
	// the operator even after a successful import.
	BackupPath string

	HistoryAdded  int
	HistoryMerged int
	RestoredFiles []string
	// DamagedKinds lists payloads that failed to decrypt and were skipped.
	DamagedKinds []pack.Kind
}

// Import unpacks a portable package and merges it into the local profile.
// The package version is validated and the passphrase checked before any
// payload is decrypted; every destination file is backed up before it is
// touched, and the credential merge is atomic with rollback on failure.
func Import(opts ImportOptions) (*ImportSummary, error) {
	opts.defaults()

	profileDir, err := opts.resolveProfile()
	if err != nil {
		return nil, err
	}

	pkg, err := pack.Unpack(opts.Input, opts.InputSize, opts.Passphrase)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{ProfileDir: profileDir}
	for kind, kindErr := range pkg.Damaged {
		opts.Log.Warning("skipping damaged payload %s: %v", kind, kindErr)
		summary.DamagedKinds = append(summary.DamagedKinds, kind)
	}

	if opts.IncludePasswords {
		if payload, ok := pkg.Payloads[pack.KindPasswords]; ok {
			if err := importCredentials(&opts, profileDir, payload, summary); err != nil {
				return nil, err
			}
		}
	}

	if opts.IncludeHistory {
		if payload, ok := pkg.Payloads[pack.KindHistory]; ok {
			if err := importHistory(&opts, profileDir, payload, summary); err != nil {
				return nil, err
			}
		}
	}

	if opts.IncludeBookmarks {
		for kind, name := range map[pack.Kind]string{
			pack.KindBookmarks: profile.BookmarksFile,
			pack.KindPrefs:     profile.PreferencesFile,
		} {
			payload, ok := pkg.Payloads[kind]
			if !ok {
				continue
			}
			if err := restoreFile(&opts, filepath.Join(profileDir, name), payload); err != nil {
				return nil, err
			}
			summary.RestoredFiles = append(summary.RestoredFiles, name)
		}
	}

	return summary, nil
}

// importCredentials plans and applies the credential merge. Conflicting
// records keep the destination's value; only origin and username of each
// conflict are logged, never password material.
func importCredentials(opts *ImportOptions, profileDir string, payload []byte, summary *ImportSummary) error {
	creds, err := unmarshalCredentials(payload)
	if err != nil {
		return err
	}

	key, err := opts.Resolver.ResolveMasterKey(profileDir)
	if err != nil {
		return err
	}

	incoming := make([]reconcile.Incoming, 0, len(creds))
	for _, c := range creds {
		incoming = append(incoming, reconcile.Incoming{
			OriginURL: c.URL,
			Username:  c.Username,
			Password:  c.Password,
			Created:   c.Created,
			LastUsed:  c.LastUsed,
		})
	}

	loginPath := filepath.Join(profileDir, profile.LoginDataFile)
	plan, err := reconcile.PlanImport(loginPath, incoming, key)
	if err != nil {
		return err
	}

	if opts.Progress != nil {
		// Apply runs in one transaction; report planning as the work unit.
		for i := range plan.Entries {
			opts.Progress(i+1, len(plan.Entries))
		}
	}

	applied, err := reconcile.Apply(plan, loginPath, key, opts.Files)
	if err != nil {
		return err
	}

	summary.Inserted = applied.Inserted
	summary.Skipped = applied.Skipped
	summary.Conflicts = applied.Conflicts
	summary.BackupPath = applied.BackupPath
	for _, c := range applied.Conflicts {
		opts.Log.Warning("conflict for %s (%s): destination value kept", c.OriginURL, c.Username)
	}
	opts.Log.Info("credentials: %d inserted, %d duplicates skipped, %d conflicts",
		applied.Inserted, applied.Skipped, len(applied.Conflicts))
	return nil
}

// importHistory merges the history payload, restoring the pre-import store
// if the merge fails.
func importHistory(opts *ImportOptions, profileDir string, payload []byte, summary *ImportSummary) error {
	historyPath := filepath.Join(profileDir, profile.HistoryFile)

	var backupPath string
	if opts.Files.Exists(historyPath) {
		var err error
		backupPath, err = opts.Files.Backup(historyPath)
		if err != nil {
			return err
		}
	}

	added, merged, err := history.Import(payload, historyPath)
	if err != nil {
		if backupPath != "" {
			_ = opts.Files.Restore(backupPath, historyPath)
		} else {
			_ = opts.Files.Fs.Remove(historyPath)
		}
		return fmt.Errorf("history merge failed, destination restored: %w", err)
	}

	summary.HistoryAdded = added
	summary.HistoryMerged = merged
	opts.Log.Info("history: %d added, %d merged", added, merged)
	return nil
}

// restoreFile backs up and overwrites one opaque profile file.
func restoreFile(opts *ImportOptions, path string, payload []byte) error {
	if opts.Files.Exists(path) {
		if _, err := opts.Files.Backup(path); err != nil {
			return err
		}
	}
	if err := opts.Files.WriteFile(path, payload); err != nil {
		return fmt.Errorf("cannot restore %s: %w", filepath.Base(path), err)
	}
	opts.Log.Info("restored %s", filepath.Base(path))
	return nil
}
