package auth

import (
	"fmt"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with your username and password",
		Long: `Log in with your username (or email) and password.

In a terminal an interactive form asks for both. In scripts, pass the
username with --username and pipe the password with --password-stdin.

Examples:
  xervo auth login
  echo "$PASSWORD" | xervo auth login --username ada --password-stdin`,
		Args:         cobra.NoArgs,
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("username", "", "Username or email")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	login, _ := cmd.Flags().GetString("username")
	login = strings.TrimSpace(login)
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")

	var password string
	switch {
	case fromStdin:
		if login == "" {
			return fmt.Errorf("--username is required with --password-stdin")
		}
		p, err := tui.ReadPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = p
	case progress.IsTerminal(cmd.OutOrStdout()):
		creds, err := tui.LoginForm(login)
		if err != nil {
			return err
		}
		login, password = creds.Login, creds.Password
	default:
		return fmt.Errorf("not a terminal: use --username with --password-stdin")
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	s, err := cmdutil.Session()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	user, err := s.Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", s.Config.Username)
	if user.Status != "" && !strings.EqualFold(user.Status, "active") {
		fmt.Fprintf(cmd.ErrOrStderr(), "Note: account status is %q.\n", user.Status)
	}
	return nil
}
