package cmd

import (
	"fmt"

	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var (
	date   string
	commit string
)

func Execute(args []string, bArgs BuildArgs) error {
	date, commit = bArgs.Date, bArgs.Commit
	app := cli.App{
		Name:                  "bravevault",
		HelpName:              "bravevault",
		Usage:                 "Move a Brave profile between machines.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "bravevault <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "export",
				Aliases:                []string{"e"},
				Usage:                  "pack the local profile into a passphrase-protected file",
				Description:            ExportDescription,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 exportAction,
				UseShortOptionHandling: true,
				Flags:                  exportFlags,
			},
			{
				Name:                   "import",
				Aliases:                []string{"m"},
				Usage:                  "merge a package file into the local profile",
				Description:            ImportDescription,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 importAction,
				UseShortOptionHandling: true,
				Flags:                  importFlags,
			},
			{
				Name:                   "inspect",
				Aliases:                []string{"i"},
				Usage:                  "show a package's cleartext header",
				Description:            InspectDescription,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Action:                 inspectAction,
				UseShortOptionHandling: true,
				Flags:                  inspectFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of bravevault",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	return app.Run(args)
}
