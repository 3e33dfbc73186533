package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/bravevault/bravevault/internal/pack"
)

var (
	inspectInput string

	inspectFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "input, i",
			Usage:       "path of the package file to inspect",
			Destination: &inspectInput,
		},
	}
)

func inspectAction(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	input := inspectInput
	if input == "" {
		input = ctx.Args().First()
	}
	if input == "" {
		return printErrWithCmdHelp(ctx, errors.New("no input file specified"))
	}

	f, err := os.Open(input)
	if err != nil {
		return runtimeExit(ctx, "inspect", "open_input", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return runtimeExit(ctx, "inspect", "stat_input", err)
	}

	manifest, err := pack.ReadManifest(f, stat.Size())
	if err != nil {
		return runtimeExit(ctx, "inspect", "read_manifest", err)
	}

	fmt.Printf("package: %s\n", input)
	fmt.Printf("format version: %d", manifest.FormatVersion)
	if manifest.FormatVersion > pack.FormatVersion {
		fmt.Printf(" (newer than this build reads)")
	}
	fmt.Println()
	fmt.Printf("created: %s\n", manifest.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("kdf: %s (m=%d KiB, t=%d, p=%d)\n",
		manifest.KDF.Algo, manifest.KDF.Memory, manifest.KDF.Iterations, manifest.KDF.Parallelism)
	fmt.Println("contains:")
	for _, kind := range manifest.Kinds {
		fmt.Printf("  - %s\n", kind)
	}
	return nil
}
