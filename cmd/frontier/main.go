// Command frontier computes a two-asset efficient frontier from a local CSV file.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"frontierBot/internal/config"
)

func main() {
	config.LoadDotEnv()
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

var commands = []subcommands.Command{
	&statsCmd{},
	&frontierCmd{},
	&chartCmd{},
}
