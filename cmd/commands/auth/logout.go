package auth

import (
	"fmt"

	"onmodulus/xervo/cmd/commands/cmdutil"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cmdutil.Session()
			if err != nil {
				return err
			}
			defer s.Close()

			name := s.Config.Username
			if err := s.Logout(); err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s.\n", name)
			return nil
		},
		SilenceUsage: true,
	}
}
