package project

import (
	"context"
	"fmt"
	"strconv"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

// ListCommand returns the "project list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Long: `List every project owned by the logged-in user.

Examples:
  xervo project list
  xervo project list -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := cmdutil.OutputFormat(cmd)
	if err != nil {
		return err
	}

	s, err := cmdutil.AuthedSession()
	if err != nil {
		return err
	}
	defer s.Close()

	userID, err := s.UserID()
	if err != nil {
		return err
	}

	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	var projects []domain.Project
	err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching projects...", func(ctx context.Context) error {
		projects, err = s.Client.Projects.List(ctx, userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != cmdutil.FormatTable {
		if projects == nil {
			projects = []domain.Project{}
		}
		return cmdutil.PrintStructured(out, format, projects)
	}

	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			cmdutil.OrDash(p.Status),
			cmdutil.OrDash(p.Domain),
			strconv.Itoa(len(p.Servos)),
			servoSize(p.ServoSize),
		})
	}
	return cmdutil.Table(out, []string{"ID", "NAME", "STATUS", "DOMAIN", "SERVOS", "SIZE"}, rows)
}

func servoSize(mb int) string {
	if mb <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d MB", mb)
}
