package config

import (
	"onmodulus/xervo/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage xervo configuration",
		Long: "View and modify persistent xervo settings.\n\n" +
			"Configuration is stored at ~/.config/xervo/config.json. The API token\n" +
			"is kept in the OS keychain, never in this file.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
