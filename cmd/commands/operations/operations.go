// Package operations implements "xervo operations".
package operations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/services/operation"
	"onmodulus/xervo/internal/util"

	"github.com/spf13/cobra"
)

// recentLimit is how many operations --all shows.
const recentLimit = 20

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operations",
		Aliases: []string{"ops"},
		Short:   "List or resume tracked lifecycle operations",
		Long: `Show lifecycle operations (deploy, start, stop, restart, scale, servo
restart, database create) started by previous CLI invocations.

By default only pending operations are shown. Use --all to include
finished ones as well.

If a command was interrupted (Ctrl+C) while waiting, its operation stays
pending. --resume waits for every pending operation again, without
resending the original request. --prune deletes finished operations older
than a week.

Examples:
  xervo operations
  xervo operations --all
  xervo operations --resume`,
		Args:         cobra.NoArgs,
		RunE:         runOperations,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("all", false, "Show all recent operations, not just pending")
	cmd.Flags().Bool("resume", false, "Resume waiting for all pending operations")
	cmd.Flags().Bool("prune", false, "Delete finished operations older than a week")
	cmd.MarkFlagsMutuallyExclusive("all", "resume", "prune")

	return cmd
}

func runOperations(cmd *cobra.Command, args []string) error {
	showAll, _ := cmd.Flags().GetBool("all")
	resume, _ := cmd.Flags().GetBool("resume")
	prune, _ := cmd.Flags().GetBool("prune")

	s, err := cmdutil.Session()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()
	s.OnInterrupt(cancel)

	ops := s.Operations(ctx, s.Poller(cmd.ErrOrStderr()))
	defer ops.Close()

	out := cmd.OutOrStdout()
	switch {
	case resume:
		if err := s.Authenticate(); err != nil {
			return err
		}
		return resumePending(ctx, cmd, ops)
	case prune:
		n, err := ops.Prune(ctx, operation.RetainFinished)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed %d finished operation(s).\n", n)
		return nil
	}

	var list []opstore.Operation
	if showAll {
		list, err = ops.ListRecent(ctx, recentLimit)
	} else {
		list, err = ops.ListPending(ctx)
	}
	if err != nil {
		return fmt.Errorf("listing operations: %w", err)
	}

	if len(list) == 0 {
		if showAll {
			fmt.Fprintln(out, "No recent operations.")
		} else {
			fmt.Fprintln(out, "No pending operations.")
		}
		return nil
	}

	if err := printOperations(cmd, list, time.Now()); err != nil {
		return err
	}
	if !showAll {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nUse --resume to wait for these operations again.\n")
	}
	return nil
}

func printOperations(cmd *cobra.Command, list []opstore.Operation, now time.Time) error {
	rows := make([][]string, 0, len(list))
	for _, op := range list {
		state := op.State
		if op.State == opstore.StateFailed && op.ErrorMessage != "" {
			state = "failed: " + util.Truncate(op.ErrorMessage, 40)
		}
		rows = append(rows, []string{
			op.Ref,
			op.Command,
			op.Kind + " " + op.Label(),
			op.TargetStatus,
			cmdutil.OrDash(op.LastStatus),
			state,
			formatAge(now.Sub(op.CreatedAt)),
		})
	}
	return cmdutil.Table(cmd.OutOrStdout(), []string{"REF", "COMMAND", "RESOURCE", "TARGET", "LAST STATUS", "STATE", "AGE"}, rows)
}

func resumePending(ctx context.Context, cmd *cobra.Command, ops *operation.Service) error {
	pending, err := ops.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("listing pending operations: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending operations to resume.")
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Resuming %d pending operation(s)...\n\n", len(pending))

	var errs []error
	for i := range pending {
		op := &pending[i]
		fmt.Fprintf(cmd.ErrOrStderr(), "[%s] Resuming %s on %s %s...\n", op.Ref, op.Command, op.Kind, op.Label())
		if _, err := ops.Resume(ctx, op); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%s] Error: %v\n", op.Ref, err)
			errs = append(errs, fmt.Errorf("%s: %w", op.Ref, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is %s.\n", op.Kind, op.Label(), op.TargetStatus)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d operation(s) did not complete: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}
