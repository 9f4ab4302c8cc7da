package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Create  CreateCmd        `cmd:"" help:"Create a room and wait for players"`
	Join    JoinCmd          `cmd:"" help:"Join an existing room by code"`
	Demo    DemoCmd          `cmd:"" help:"Play a full game between four automated players"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("fruitbowl"),
		kong.Description("Four-player fruit card passing game, synced through a shared local store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
