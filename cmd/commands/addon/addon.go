// Package addon implements "xervo addon".
package addon

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "addon",
		Aliases: []string{"addons"},
		Short:   "Manage project add-ons",
		Long: `List the add-ons available on the platform and provision or remove
them on a project. Add-on settings are exposed to the project as
environment variables.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(AvailableCommand())
	cmd.AddCommand(AddCommand())
	cmd.AddCommand(RemoveCommand())

	return cmd
}

// ListCommand returns the "addon list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List add-ons provisioned on a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				addons, err := s.Client.Addons.List(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("listing add-ons: %w", err)
				}
				out := cmd.OutOrStdout()
				if format != cmdutil.FormatTable {
					if addons == nil {
						addons = []domain.Addon{}
					}
					return cmdutil.PrintStructured(out, format, addons)
				}
				if len(addons) == 0 {
					fmt.Fprintf(out, "No add-ons on %q.\n", p.Name)
					return nil
				}
				rows := make([][]string, 0, len(addons))
				for _, a := range addons {
					rows = append(rows, []string{a.ID, a.Name, cmdutil.OrDash(a.Plan), strings.Join(configKeys(a.Config), ", ")})
				}
				return cmdutil.Table(out, []string{"ID", "ADD-ON", "PLAN", "VARIABLES"}, rows)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

// AvailableCommand returns the "addon available" command.
func AvailableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List add-ons that can be provisioned",
		Long: `List the platform's add-on catalog with plans and regions. The catalog
is cached for a few hours; --refresh fetches it again.`,
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

			var addons []domain.AvailableAddon
			err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching add-ons...", func(ctx context.Context) error {
				addons, err = cat.Addons(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("listing add-ons: %w", err)
			}

			out := cmd.OutOrStdout()
			if format != cmdutil.FormatTable {
				if addons == nil {
					addons = []domain.AvailableAddon{}
				}
				return cmdutil.PrintStructured(out, format, addons)
			}
			if len(addons) == 0 {
				fmt.Fprintln(out, "No add-ons available.")
				return nil
			}
			rows := make([][]string, 0, len(addons))
			for _, a := range addons {
				rows = append(rows, []string{a.ID, a.Name, planNames(a.Plans), cmdutil.OrDash(strings.Join(a.Regions, ", "))})
			}
			return cmdutil.Table(out, []string{"ID", "NAME", "PLANS", "REGIONS"}, rows)
		},
		SilenceUsage: true,
	}
	cmdutil.AddOutputFlag(cmd)
	cmd.Flags().Bool("refresh", false, "Ignore the cached catalog")
	return cmd
}

// AddCommand returns the "addon add" command.
func AddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <addon>",
		Short: "Provision an add-on on a project",
		Long: `Provision an add-on, given by id or name, on a project. Without --plan
the add-on's first plan is used. The region defaults to the default-region
setting, then to the add-on's first region.

Examples:
  xervo addon add mongodb -p api
  xervo addon add redis --plan large --region us-east-1 -p api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runAdd(ctx, cmd, s, p, args[0])
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().String("plan", "", "Plan id or name")
	cmd.Flags().String("region", "", "Region to provision in")
	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project, ref string) error {
	planRef, _ := cmd.Flags().GetString("plan")
	region, _ := cmd.Flags().GetString("region")

	addon, plan, err := s.Catalog().FindAddon(ctx, ref, planRef)
	if err != nil {
		return err
	}
	region, err = pickRegion(addon, region, s.Config.DefaultRegion)
	if err != nil {
		return err
	}

	var provisioned *domain.Addon
	err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Provisioning "+addon.Name+"...", func(ctx context.Context) error {
		provisioned, err = s.Client.Addons.Provision(ctx, p.ID, domain.ProvisionAddonOpts{
			AddonID: addon.ID,
			PlanID:  plan.ID,
			Region:  region,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("provisioning %s: %w", addon.Name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Added %s (%s) to %q.\n", styles.SuccessText.Render("✓"), addon.Name, plan.Name, p.Name)
	if provisioned != nil && len(provisioned.Config) > 0 {
		fields := make([][2]string, 0, len(provisioned.Config))
		for _, k := range configKeys(provisioned.Config) {
			fields = append(fields, [2]string{k, provisioned.Config[k]})
		}
		cmdutil.Detail(out, fields)
	}
	return nil
}

// pickRegion returns the requested region, or the configured default,
// or the add-on's first region. A region the add-on does not list is
// rejected.
func pickRegion(addon domain.AvailableAddon, requested, fallback string) (string, error) {
	region := requested
	if region == "" {
		region = fallback
	}
	if len(addon.Regions) == 0 {
		return region, nil
	}
	if region == "" {
		return addon.Regions[0], nil
	}
	for _, r := range addon.Regions {
		if strings.EqualFold(r, region) {
			return r, nil
		}
	}
	if requested == "" {
		return addon.Regions[0], nil
	}
	return "", fmt.Errorf("%s is not offered in %s (regions: %s)", addon.Name, region, strings.Join(addon.Regions, ", "))
}

// RemoveCommand returns the "addon remove" command.
func RemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <addon>",
		Short: "Remove an add-on from a project",
		Long: `Deprovision an add-on. Its data is deleted. You are asked to confirm
in a terminal; --yes skips the prompt and is required otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runRemove(ctx, cmd, s, p, args[0])
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().BoolP("yes", "y", false, "Remove without asking for confirmation")
	return cmd
}

func runRemove(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project, ref string) error {
	addons, err := s.Client.Addons.List(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("listing add-ons: %w", err)
	}
	addon, err := MatchAddon(addons, ref)
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !progress.IsTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("refusing to remove %s without --yes", addon.Name)
		}
		ok, err := tui.Confirm(fmt.Sprintf("Remove %s from %q?", addon.Name, p.Name), "The add-on's data is deleted.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Remove cancelled.")
			return nil
		}
	}

	if err := s.Client.Addons.Deprovision(ctx, p.ID, addon.ID); err != nil {
		return fmt.Errorf("removing %s: %w", addon.Name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %q.\n", addon.Name, p.Name)
	return nil
}

// MatchAddon finds ref among a project's add-ons by instance id, add-on
// id or name.
func MatchAddon(addons []domain.Addon, ref string) (*domain.Addon, error) {
	var matches []*domain.Addon
	for i := range addons {
		a := &addons[i]
		if a.ID == ref {
			return a, nil
		}
		if a.AddonID == ref || strings.EqualFold(a.Name, ref) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("add-on %q: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return nil, fmt.Errorf("add-on %q is provisioned more than once; use its id", ref)
}

func configKeys(cfg map[string]string) []string {
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func planNames(plans []domain.AddonPlan) string {
	names := make([]string, 0, len(plans))
	for _, p := range plans {
		names = append(names, p.Name)
	}
	return cmdutil.OrDash(strings.Join(names, ", "))
}
