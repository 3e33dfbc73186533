package migrate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bravevault/bravevault/internal/history"
	"github.com/bravevault/bravevault/internal/logindata"
	"github.com/bravevault/bravevault/internal/pack"
	"github.com/bravevault/bravevault/internal/profile"
)

// ExportOptions configures one export operation.
type ExportOptions struct {
	Options
	// Output receives the package archive.
	Output io.Writer
	// Passphrase protects the package. Must be non-empty; generation for
	// empty operator input happens at the CLI boundary so the value can be
	// shown once.
	Passphrase string

	IncludePasswords bool
	IncludeHistory   bool
	IncludeBookmarks bool
	// HistoryDays limits history to the last N days when > 0.
	HistoryDays int
}

// ExportSummary reports what an export packed.
type ExportSummary struct {
	ProfileDir  string
	Kinds       []pack.Kind
	Credentials int
}

// Export reads the profile's stores, decrypts stored passwords with the
// local master key, and writes a passphrase-protected portable package.
// Plaintext passwords exist only in memory between decode and packing.
func Export(opts ExportOptions) (*ExportSummary, error) {
	opts.defaults()
	if opts.Passphrase == "" {
		return nil, fmt.Errorf("export requires a package passphrase")
	}

	profileDir, err := opts.resolveProfile()
	if err != nil {
		return nil, err
	}
	summary := &ExportSummary{ProfileDir: profileDir}
	payloads := make(map[pack.Kind][]byte)

	if opts.IncludePasswords {
		payload, count, err := exportCredentials(&opts, profileDir)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			payloads[pack.KindPasswords] = payload
			summary.Credentials = count
		}
	}

	if opts.IncludeHistory {
		historyPath := filepath.Join(profileDir, profile.HistoryFile)
		if opts.Files.Exists(historyPath) {
			copied, cleanup, err := opts.Files.SafeCopy(historyPath)
			if err != nil {
				return nil, err
			}
			payload, err := history.Export(copied, opts.HistoryDays)
			cleanup()
			if err != nil {
				return nil, err
			}
			payloads[pack.KindHistory] = payload
		} else {
			opts.Log.Warning("history store not found at %s, skipping", historyPath)
		}
	}

	if opts.IncludeBookmarks {
		for kind, name := range map[pack.Kind]string{
			pack.KindBookmarks: profile.BookmarksFile,
			pack.KindPrefs:     profile.PreferencesFile,
		} {
			path := filepath.Join(profileDir, name)
			if !opts.Files.Exists(path) {
				opts.Log.Warning("%s file not found, skipping", name)
				continue
			}
			blob, err := opts.Files.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("cannot read %s: %w", name, err)
			}
			payloads[kind] = blob
		}
	}

	if len(payloads) == 0 {
		return nil, fmt.Errorf("nothing to export from %s", profileDir)
	}

	if err := pack.Pack(payloads, opts.Passphrase, opts.Output); err != nil {
		return nil, err
	}
	for kind := range payloads {
		summary.Kinds = append(summary.Kinds, kind)
	}
	opts.Log.Info("exported %d kinds from %s", len(payloads), profileDir)
	return summary, nil
}

// exportCredentials decodes the Login Data store into the package's
// password payload. Any corrupt envelope is terminal: exporting a silently
// incomplete credential set would be worse than failing.
func exportCredentials(opts *ExportOptions, profileDir string) ([]byte, int, error) {
	loginPath := filepath.Join(profileDir, profile.LoginDataFile)
	if !opts.Files.Exists(loginPath) {
		opts.Log.Warning("credential store not found at %s, skipping passwords", loginPath)
		return nil, 0, nil
	}

	key, err := opts.Resolver.ResolveMasterKey(profileDir)
	if err != nil {
		return nil, 0, err
	}

	copied, cleanup, err := opts.Files.SafeCopy(loginPath)
	if err != nil {
		return nil, 0, err
	}
	defer cleanup()

	decoded, corrupt, err := logindata.DecodeStore(copied, key)
	if err != nil {
		return nil, 0, err
	}
	if len(corrupt) > 0 {
		return nil, 0, fmt.Errorf("%w: %d of %d records failed to decrypt, first: %v",
			logindata.ErrCorruptStore, len(corrupt), len(corrupt)+len(decoded), corrupt[0])
	}

	creds := make([]portableCredential, 0, len(decoded))
	for i, d := range decoded {
		creds = append(creds, portableCredential{
			URL:      d.OriginURL,
			Username: d.Username,
			Password: d.Password,
			Created:  d.Created,
			LastUsed: d.LastUsed,
		})
		if opts.Progress != nil {
			opts.Progress(i+1, len(decoded))
		}
	}

	payload, err := marshalCredentials(creds)
	if err != nil {
		return nil, 0, err
	}
	opts.Log.Info("decoded %d credentials", len(creds))
	return payload, len(creds), nil
}
