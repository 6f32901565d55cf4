package project

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

// ShowCommand returns the "project show" command.
func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show project details",
		Long: `Show a project's status, domains and servos.

Examples:
  xervo project show -p api
  xervo project show -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runShow(ctx, cmd, s, p, format)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

func runShow(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project, format string) error {
	project, err := s.Client.Projects.Get(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("fetching project: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != cmdutil.FormatTable {
		return cmdutil.PrintStructured(out, format, project)
	}

	created := ""
	if !project.CreatedAt.IsZero() {
		created = project.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	images := make([]string, 0, len(project.ImageTagIDs))
	for kind, id := range project.ImageTagIDs {
		images = append(images, kind+"="+id)
	}
	slices.Sort(images)

	fmt.Fprintln(out, styles.Title.Render(project.Name))
	cmdutil.Detail(out, [][2]string{
		{"ID", project.ID},
		{"Status", styles.StatusIndicator(project.Status)},
		{"Domain", project.Domain},
		{"Custom domains", strings.Join(project.CustomDomains, ", ")},
		{"Servo size", servoSize(project.ServoSize)},
		{"Images", strings.Join(images, ", ")},
		{"Created", created},
	})

	if len(project.Servos) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	return cmdutil.ServoTable(out, project.Servos)
}
