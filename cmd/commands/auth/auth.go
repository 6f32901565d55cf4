package auth

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in to the platform and manage your account",
		Long: `Log in to the platform and manage your account.

The API token returned by a login is stored in the OS keychain; the
username and user id are kept in the config file.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(LogoutCommand())
	cmd.AddCommand(SignupCommand())
	cmd.AddCommand(StatusCommand())

	return cmd
}
