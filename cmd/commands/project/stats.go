package project

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/services/platform"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// StatsCommand returns the "project stats" command.
func StatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show request statistics",
		Long: `Show request, bandwidth and response-time statistics for a recent
period.

Examples:
  xervo project stats -p api
  xervo project stats -p api --since 168h -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			since, _ := cmd.Flags().GetDuration("since")
			if since <= 0 {
				return fmt.Errorf("--since must be positive")
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				end := time.Now()
				stats, err := s.Client.Stats.Project(ctx, p.ID, end.Add(-since), end)
				if err != nil {
					return fmt.Errorf("fetching stats: %w", err)
				}
				if format != cmdutil.FormatTable {
					return cmdutil.PrintStructured(cmd.OutOrStdout(), format, stats)
				}
				return printStats(cmd, stats)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmdutil.AddOutputFlag(cmd)
	cmd.Flags().Duration("since", 24*time.Hour, "Length of the period ending now")
	return cmd
}

func printStats(cmd *cobra.Command, st *domain.ProjectStats) error {
	out := cmd.OutOrStdout()
	period := ""
	if !st.Start.IsZero() && !st.End.IsZero() {
		period = st.Start.Local().Format("2006-01-02 15:04") + " to " + st.End.Local().Format("2006-01-02 15:04")
	}
	cmdutil.Detail(out, [][2]string{
		{"Period", period},
		{"Requests", humanize.Comma(st.Requests)},
		{"Bandwidth in", humanize.Bytes(uint64(max(st.BandwidthIn, 0)))},
		{"Bandwidth out", humanize.Bytes(uint64(max(st.BandwidthOut, 0)))},
		{"Avg response", fmt.Sprintf("%.0f ms", st.AvgResponseTime)},
	})
	if len(st.StatusCodes) == 0 {
		return nil
	}

	codes := make([]string, 0, len(st.StatusCodes))
	for code := range st.StatusCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{code, strconv.Itoa(st.StatusCodes[code])})
	}
	fmt.Fprintln(out)
	return cmdutil.Table(out, []string{"STATUS", "COUNT"}, rows)
}
