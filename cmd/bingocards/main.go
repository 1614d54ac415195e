package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" default:"bingo.hcl" type:"path" help:"HCL config file (optional)"`
	Debug   bool             `help:"Enable debug logging"`

	Generate GenerateCmd `cmd:"" default:"1" help:"Generate cards and write the workbook, images, archive and PDF"`
	Check    CheckCmd    `cmd:"" help:"Check that every participant can get a card, without writing anything"`
	Verify   VerifyCmd   `cmd:"" help:"Verify a run manifest against the input sheet"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bingocards"),
		kong.Description("Generate people-bingo cards from a sign-up sheet"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
