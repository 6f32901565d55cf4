package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/manifest"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/packager"
	"onmodulus/xervo/internal/poller"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// DeployCommand returns the "project deploy" command.
func DeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload and deploy a directory",
		Long: `Zip a directory, upload it and wait for the project to come up.

The directory defaults to the one holding the nearest xervo.toml, or the
current directory. Version control folders are always left out, as is
anything matched by the manifest's exclude globs.

Deploy output is streamed while the project builds; --no-logs hides it.
The deploy is recorded locally, so an interrupted wait can be resumed with
"xervo operations --resume".

Examples:
  xervo project deploy
  xervo project deploy -p api --dir ./build --no-logs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runDeploy(ctx, cmd, s, p)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().String("dir", "", "Directory to deploy (default: the xervo.toml directory or .)")
	cmd.Flags().Bool("no-logs", false, "Do not stream deploy output")
	return cmd
}

func runDeploy(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project) error {
	dir, err := deployDir(cmd)
	if err != nil {
		return err
	}
	m, err := manifest.Load(dir)
	if err != nil {
		return err
	}

	archive, err := packager.Build(dir, m.Exclude)
	if err != nil {
		return fmt.Errorf("packaging %s: %w", dir, err)
	}
	defer archive.Remove() //nolint:errcheck
	s.Logger.Debug("built deploy archive", "dir", dir, "files", archive.Files, "bytes", archive.Size)

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Packaged %d files (%s) from %s\n", archive.Files, humanize.Bytes(uint64(archive.Size)), dir)

	noLogs, _ := cmd.Flags().GetBool("no-logs")
	pl := s.Poller(errOut)
	ops := s.Operations(ctx, pl)
	defer ops.Close()

	op := &opstore.Operation{
		Command:      "project deploy",
		Kind:         opstore.KindProject,
		ResourceID:   p.ID,
		ResourceName: p.Name,
		TargetStatus: domain.StatusRunning,
	}
	project, err := ops.Deploy(ctx, op, poller.Deploy{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Upload: func(ctx context.Context) error {
			f, err := archive.Open()
			if err != nil {
				return err
			}
			defer f.Close()
			return s.Client.Projects.Upload(ctx, p.ID, f, archive.Size)
		},
		Bar:      progress.NewBar(errOut, "Uploading"),
		ShowLogs: !noLogs,
	})
	if err != nil {
		return fmt.Errorf("deploying %q: %w", p.Name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Project %q is running.\n", styles.SuccessText.Render("✓"), project.Name)
	if project.Domain != "" {
		fmt.Fprintf(out, "  %s\n", projectURL(project.Domain))
	}
	return nil
}

// deployDir returns --dir, the nearest manifest's directory, or the
// working directory.
func deployDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		return filepath.Abs(dir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	m, err := manifest.Find(wd)
	if err != nil {
		return "", err
	}
	if m.Exists() {
		return m.Dir, nil
	}
	return wd, nil
}

func projectURL(domain string) string {
	return "https://" + domain
}
