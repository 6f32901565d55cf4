// Package image implements "xervo image".
package image

import (
	"context"
	"fmt"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Aliases: []string{"images"},
		Short:   "Browse runtime images",
	}
	cmd.AddCommand(ListCommand())
	return cmd
}

// ListCommand returns the "image list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runtime images and their versions",
		Long: `List the runtime images a project can be built on. Use the NAME or
LABEL column, optionally with @version, as the --image value of
"xervo project create". The list is cached; --refresh fetches it again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			s, err := cmdutil.AuthedSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			cat := s.Catalog()
			if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
				if err := cat.Refresh(); err != nil {
					s.Logger.Warn("could not clear catalog cache", "error", err)
				}
			}

			var images []domain.Image
			err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching images...", func(ctx context.Context) error {
				images, err = cat.Images(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("listing images: %w", err)
			}

			out := cmd.OutOrStdout()
			if format != cmdutil.FormatTable {
				if images == nil {
					images = []domain.Image{}
				}
				return cmdutil.PrintStructured(out, format, images)
			}
			if len(images) == 0 {
				fmt.Fprintln(out, "No images available.")
				return nil
			}
			rows := make([][]string, 0, len(images))
			for _, img := range images {
				versions := make([]string, 0, len(img.Tags))
				for _, tag := range img.Tags {
					versions = append(versions, tag.Version)
				}
				rows = append(rows, []string{img.Name, cmdutil.OrDash(img.Label), cmdutil.OrDash(img.Type), cmdutil.OrDash(strings.Join(versions, ", "))})
			}
			return cmdutil.Table(out, []string{"NAME", "LABEL", "TYPE", "VERSIONS"}, rows)
		},
		SilenceUsage: true,
	}
	cmdutil.AddOutputFlag(cmd)
	cmd.Flags().Bool("refresh", false, "Ignore the cached list")
	return cmd
}
