package project

import (
	"context"
	"fmt"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

// DeleteCommand returns the "project delete" command.
func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project",
		Long: `Delete a project and everything running in it.

You are asked to confirm in a terminal. Pass --yes to skip the prompt;
it is required when not running in a terminal.

Examples:
  xervo project delete -p api
  xervo project delete -p api --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runDelete(ctx, cmd, s, p)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func runDelete(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !progress.IsTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("refusing to delete project %q without --yes", p.Name)
		}
		ok, err := tui.Confirm(
			fmt.Sprintf("Delete project %q?", p.Name),
			"Its servos, logs and settings are removed. This cannot be undone.",
		)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Delete cancelled.")
			return nil
		}
	}

	if err := s.Client.Projects.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %q deleted.\n", p.Name)
	return nil
}
