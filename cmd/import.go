package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/bravevault/bravevault/internal/migrate"
	"github.com/bravevault/bravevault/pkg/logger"
)

var (
	importInput       string
	importPassphrase  string
	importProfileDir  string
	importNoPasswords bool
	importNoHistory   bool
	importNoBookmarks bool

	importFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "input, i",
			Usage:       "path of the package file to import",
			Destination: &importInput,
		},
		cli.StringFlag{
			Name:        "passphrase, p",
			Usage:       "package passphrase (prompted for when omitted)",
			EnvVar:      "BRAVEVAULT_PASSPHRASE",
			Destination: &importPassphrase,
		},
		cli.StringFlag{
			Name:        "profile",
			Usage:       "Brave profile directory (auto-detected when omitted)",
			Destination: &importProfileDir,
		},
		cli.BoolFlag{
			Name:        "no-passwords",
			Usage:       "use this flag to skip the package's stored passwords",
			Destination: &importNoPasswords,
		},
		cli.BoolFlag{
			Name:        "no-history",
			Usage:       "use this flag to skip the package's browsing history",
			Destination: &importNoHistory,
		},
		cli.BoolFlag{
			Name:        "no-bookmarks",
			Usage:       "use this flag to skip the package's bookmarks and preferences",
			Destination: &importNoBookmarks,
		},
	}
)

func importAction(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if importInput == "" {
		return printErrWithCmdHelp(ctx, errors.New("no input file specified"))
	}

	pass := importPassphrase
	if pass == "" {
		var err error
		pass, err = promptPassphrase("Package passphrase: ")
		if err != nil {
			return runtimeExit(ctx, "import", "read_passphrase", err)
		}
	}
	if pass == "" {
		return printErrWithCmdHelp(ctx, errors.New("no passphrase given"))
	}

	f, err := os.Open(importInput)
	if err != nil {
		return runtimeExit(ctx, "import", "open_input", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return runtimeExit(ctx, "import", "stat_input", err)
	}

	progress, wait := newProgress("Importing")
	summary, err := migrate.Import(migrate.ImportOptions{
		Options: migrate.Options{
			ProfileDir: importProfileDir,
			Log:        logger.NewStandardLogger(log.New(os.Stderr, "", 0)),
			Progress:   progress,
		},
		Input:            f,
		InputSize:        stat.Size(),
		Passphrase:       pass,
		IncludePasswords: !importNoPasswords,
		IncludeHistory:   !importNoHistory,
		IncludeBookmarks: !importNoBookmarks,
	})
	wait()
	if err != nil {
		return runtimeExit(ctx, "import", "import", err)
	}

	fmt.Printf("bravevault: merged package into %s\n", summary.ProfileDir)
	fmt.Printf("credentials: %d inserted, %d duplicates skipped, %d conflicts\n",
		summary.Inserted, summary.Skipped, len(summary.Conflicts))
	for _, c := range summary.Conflicts {
		fmt.Printf("  conflict: %s (%s) kept the destination's stored password\n", c.OriginURL, c.Username)
	}
	if summary.HistoryAdded > 0 || summary.HistoryMerged > 0 {
		fmt.Printf("history: %d added, %d merged\n", summary.HistoryAdded, summary.HistoryMerged)
	}
	for _, name := range summary.RestoredFiles {
		fmt.Printf("restored: %s\n", name)
	}
	for _, kind := range summary.DamagedKinds {
		fmt.Printf("skipped damaged payload: %s\n", kind)
	}
	if summary.BackupPath != "" {
		fmt.Printf("pre-import credential store kept at %s\n", summary.BackupPath)
	}
	return nil
}
