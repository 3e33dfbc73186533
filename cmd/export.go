package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/bravevault/bravevault/internal/migrate"
	"github.com/bravevault/bravevault/internal/pack"
	"github.com/bravevault/bravevault/pkg/logger"
)

var (
	exportOutput      string
	exportPassphrase  string
	exportProfileDir  string
	exportNoPasswords bool
	exportNoHistory   bool
	exportNoBookmarks bool
	exportHistoryDays int

	exportFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "output, o",
			Usage:       "path of the package file to write",
			Destination: &exportOutput,
		},
		cli.StringFlag{
			Name:        "passphrase, p",
			Usage:       "package passphrase (prompted for, or generated, when omitted)",
			EnvVar:      "BRAVEVAULT_PASSPHRASE",
			Destination: &exportPassphrase,
		},
		cli.StringFlag{
			Name:        "profile",
			Usage:       "Brave profile directory (auto-detected when omitted)",
			Destination: &exportProfileDir,
		},
		cli.BoolFlag{
			Name:        "no-passwords",
			Usage:       "use this flag to leave stored passwords out of the package",
			Destination: &exportNoPasswords,
		},
		cli.BoolFlag{
			Name:        "no-history",
			Usage:       "use this flag to leave browsing history out of the package",
			Destination: &exportNoHistory,
		},
		cli.BoolFlag{
			Name:        "no-bookmarks",
			Usage:       "use this flag to leave bookmarks and preferences out of the package",
			Destination: &exportNoBookmarks,
		},
		cli.IntFlag{
			Name:        "history-days, d",
			Usage:       "only export history from the last n days (default: everything)",
			Destination: &exportHistoryDays,
		},
	}
)

func exportAction(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if exportOutput == "" {
		return printErrWithCmdHelp(ctx, errors.New("no output file specified"))
	}

	pass := exportPassphrase
	generated := false
	if pass == "" {
		var err error
		pass, err = promptPassphrase("Package passphrase (leave empty to generate one): ")
		if err != nil {
			return runtimeExit(ctx, "export", "read_passphrase", err)
		}
	}
	if pass == "" {
		var err error
		pass, err = pack.GeneratePassphrase()
		if err != nil {
			return runtimeExit(ctx, "export", "gen_passphrase", err)
		}
		generated = true
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return runtimeExit(ctx, "export", "create_output", err)
	}

	progress, wait := newProgress("Exporting")
	summary, err := migrate.Export(migrate.ExportOptions{
		Options: migrate.Options{
			ProfileDir: exportProfileDir,
			Log:        logger.NewStandardLogger(log.New(os.Stderr, "", 0)),
			Progress:   progress,
		},
		Output:           f,
		Passphrase:       pass,
		IncludePasswords: !exportNoPasswords,
		IncludeHistory:   !exportNoHistory,
		IncludeBookmarks: !exportNoBookmarks,
		HistoryDays:      exportHistoryDays,
	})
	wait()
	if err != nil {
		_ = f.Close()
		_ = os.Remove(exportOutput)
		return runtimeExit(ctx, "export", "export", err)
	}
	if err = f.Close(); err != nil {
		return runtimeExit(ctx, "export", "close_output", err)
	}

	fmt.Printf("bravevault: exported %d credentials, %d data kinds from %s\n",
		summary.Credentials, len(summary.Kinds), summary.ProfileDir)
	fmt.Printf("bravevault: package written to %s\n", exportOutput)
	if generated {
		fmt.Printf("\nGenerated passphrase: %s\n", pass)
		fmt.Println("Write it down now. It is shown only this once and the package cannot be opened without it.")
	}
	return nil
}
