package auth

import (
	"errors"
	"fmt"
	"os"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/config"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who you are logged in as",
		Long: `Show the logged-in user and API endpoint. With --check the stored
token is verified against the API.

Example:
  xervo auth status --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cmdutil.Session()
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			endpoint := fmt.Sprintf("%s:%d", s.Config.Host(), s.Config.Port())
			if !s.Config.SSL() {
				endpoint += " (no TLS)"
			}

			_, tokenErr := s.Token()
			switch {
			case os.Getenv(config.EnvToken) != "":
				fmt.Fprintf(out, "%s %s\n", styles.Label.Render("Token:"), "from "+config.EnvToken)
			case errors.Is(tokenErr, domain.ErrNotLoggedIn):
				fmt.Fprintln(out, "Not logged in.")
				fmt.Fprintf(out, "%s %s\n", styles.Label.Render("API:"), endpoint)
				return nil
			case tokenErr != nil:
				return tokenErr
			}

			if s.Config.Username != "" {
				fmt.Fprintf(out, "%s %s (%s)\n", styles.Label.Render("User:"), s.Config.Username, s.Config.UserID)
			}
			fmt.Fprintf(out, "%s %s\n", styles.Label.Render("API:"), endpoint)

			check, _ := cmd.Flags().GetBool("check")
			if !check || s.Config.UserID == "" {
				return nil
			}
			if err := s.Authenticate(); err != nil {
				return err
			}
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()
			if _, err := s.Client.Users.Get(ctx, s.Config.UserID); err != nil {
				return fmt.Errorf("token check failed: %w", err)
			}
			fmt.Fprintln(out, styles.SuccessText.Render("Token is valid."))
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().Bool("check", false, "Verify the stored token with the API")

	return cmd
}
