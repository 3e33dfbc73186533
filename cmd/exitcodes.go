package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bravevault/bravevault/internal/keyresolve"
	"github.com/bravevault/bravevault/internal/logindata"
	"github.com/bravevault/bravevault/internal/pack"
	"github.com/bravevault/bravevault/internal/profile"
	"github.com/bravevault/bravevault/internal/reconcile"
)

// Exit codes, one per failure class, so scripts can branch on the outcome
// without parsing output.
const (
	ExitKeyUnavailable     = 10
	ExitProfileLocked      = 11
	ExitCorruptStore       = 12
	ExitBadPassphrase      = 13
	ExitUnsupportedVersion = 14
	ExitImportFailed       = 15
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, keyresolve.ErrKeyUnavailable):
		return ExitKeyUnavailable
	case errors.Is(err, profile.ErrProfileLocked):
		return ExitProfileLocked
	case errors.Is(err, logindata.ErrCorruptStore):
		return ExitCorruptStore
	case errors.Is(err, pack.ErrBadPassphrase):
		return ExitBadPassphrase
	case errors.Is(err, pack.ErrUnsupportedVersion):
		return ExitUnsupportedVersion
	case errors.Is(err, reconcile.ErrImportFailed):
		return ExitImportFailed
	default:
		return 1
	}
}

func remedy(err error) string {
	switch {
	case errors.Is(err, keyresolve.ErrKeyUnavailable):
		return "hint: unlock the OS keyring and run as the user who owns the profile"
	case errors.Is(err, profile.ErrProfileLocked):
		return "hint: close every Brave window and background process, then retry"
	case errors.Is(err, logindata.ErrCorruptStore):
		return "hint: restore the profile from a backup, nothing was exported"
	case errors.Is(err, pack.ErrBadPassphrase):
		return "hint: check the passphrase and retry, nothing was imported"
	case errors.Is(err, pack.ErrUnsupportedVersion):
		return "hint: upgrade bravevault to a build that reads this package version"
	case errors.Is(err, reconcile.ErrImportFailed):
		return "hint: the credential store was restored from its backup, retry after closing Brave"
	default:
		return ""
	}
}

// runtimeExit prints the error plus a remediation hint and maps it to the
// command's exit code.
func runtimeExit(ctx *cli.Context, cmd, action string, err error) error {
	printRuntimeErr(ctx, cmd, action, err)
	if hint := remedy(err); hint != "" {
		fmt.Println(hint)
	}
	return cli.NewExitError("", exitCode(err))
}
