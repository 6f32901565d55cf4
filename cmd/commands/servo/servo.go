// Package servo implements "xervo servo".
package servo

import (
	"context"
	"fmt"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servo",
		Aliases: []string{"servos"},
		Short:   "Inspect and restart servos",
		Long:    `A servo is one running instance of a project.`,
	}
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(RestartCommand())
	return cmd
}

// ListCommand returns the "servo list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's servos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				servos, err := s.Client.Servos.List(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("listing servos: %w", err)
				}
				out := cmd.OutOrStdout()
				if format != cmdutil.FormatTable {
					if servos == nil {
						servos = []domain.Servo{}
					}
					return cmdutil.PrintStructured(out, format, servos)
				}
				if len(servos) == 0 {
					fmt.Fprintf(out, "No servos running for %q.\n", p.Name)
					return nil
				}
				return cmdutil.ServoTable(out, servos)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

// RestartCommand returns the "servo restart" command.
func RestartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart <servo-id>",
		Short: "Restart one servo",
		Long: `Restart a single servo and wait until it is running again. The wait
can be resumed with "xervo operations --resume" if interrupted.

Example:
  xervo servo restart 5f2a9c`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cmdutil.AuthedSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()
			s.OnInterrupt(cancel)

			id := args[0]
			sv, err := s.Client.Servos.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("fetching servo %s: %w", id, err)
			}

			pl := s.Poller(cmd.ErrOrStderr())
			ops := s.Operations(ctx, pl)
			defer ops.Close()

			op := &opstore.Operation{
				Command:      "servo restart",
				Kind:         opstore.KindServo,
				ResourceID:   id,
				TargetStatus: domain.StatusRunning,
				LastStatus:   sv.Status,
			}
			_, err = ops.Run(ctx, op, "Restarting servo...", func(ctx context.Context) error {
				return s.Client.Servos.Restart(ctx, id)
			})
			if err != nil {
				return fmt.Errorf("restarting servo %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Servo %s restarted.\n", styles.SuccessText.Render("✓"), id)
			return nil
		},
		SilenceUsage: true,
	}
	return cmd
}
