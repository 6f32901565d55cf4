package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// downloadStall is how long a log download may go without moving a byte.
const downloadStall = 30 * time.Second

// LogsCommand returns the "project logs" command.
func LogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show or download project logs",
		Long: `Print the current logs of every servo of a project, or download the
full log archive with --download.

Examples:
  xervo project logs -p api
  xervo project logs -p api --download api-logs.tar.gz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				if file, _ := cmd.Flags().GetString("download"); file != "" {
					return downloadLogs(ctx, cmd, s, p, file)
				}
				return printLogs(ctx, cmd, s, p)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().String("download", "", "Save the log archive to this file")
	return cmd
}

func printLogs(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project) error {
	sources, err := s.Client.Projects.Logs(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("fetching logs: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(sources) == 0 {
		fmt.Fprintln(out, "No logs yet.")
		return nil
	}
	writeSources(out, sources)
	return nil
}

func writeSources(w io.Writer, sources []librarian.LogSource) {
	for i, src := range sources {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, styles.MutedText.Render("==> "+src.Key+" <=="))
		text := src.Text
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		fmt.Fprint(w, text)
	}
}

func downloadLogs(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Downloading logs for %q...\n", p.Name)
	n, err := s.Client.Projects.DownloadLogs(ctx, p.ID, f, downloadStall)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(file)
		return fmt.Errorf("downloading logs: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s.\n", humanize.Bytes(uint64(n)), file)
	return nil
}
