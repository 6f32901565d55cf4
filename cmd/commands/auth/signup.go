package auth

import (
	"fmt"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

func SignupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		Long: `Create a new account interactively, then log in with it.

Example:
  xervo auth signup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !progress.IsTerminal(cmd.OutOrStdout()) {
				return fmt.Errorf("signup needs an interactive terminal")
			}
			opts, err := tui.SignupForm()
			if err != nil {
				return err
			}

			s, err := cmdutil.Session()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			if _, err := s.Client.Users.Create(ctx, *opts); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			if _, err := s.Login(ctx, opts.Username, opts.Password); err != nil {
				return fmt.Errorf("account created, but login failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. You are logged in.\n", s.Config.Username)
			return nil
		},
		SilenceUsage: true,
	}
}
