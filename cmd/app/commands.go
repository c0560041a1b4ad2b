package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getTriageCommands(version)...)
	cmds = append(cmds, getSystemCommands()...)
	return cmds
}
