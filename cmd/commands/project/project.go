// Package project implements "xervo project" and its subcommands.
package project

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
		Long: `Create, deploy and operate projects.

Commands that act on one project take -p/--project (name or id). Without
it the project named in the nearest xervo.toml is used, and in a terminal
you are asked to pick one.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(DeleteCommand())
	cmd.AddCommand(DeployCommand())
	cmd.AddCommand(StartCommand())
	cmd.AddCommand(StopCommand())
	cmd.AddCommand(RestartCommand())
	cmd.AddCommand(ScaleCommand())
	cmd.AddCommand(LogsCommand())
	cmd.AddCommand(EnvCommand())
	cmd.AddCommand(DomainCommand())
	cmd.AddCommand(SSLCommand())
	cmd.AddCommand(StatsCommand())

	return cmd
}
