package project

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/services/platform"

	"github.com/spf13/cobra"
)

// DomainCommand returns the "project domain" command group.
func DomainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domain",
		Aliases: []string{"domains"},
		Short:   "Manage custom domains",
	}
	cmd.AddCommand(domainListCommand())
	cmd.AddCommand(domainChangeCommand("add", "Attach custom domains", addDomains))
	cmd.AddCommand(domainChangeCommand("remove", "Detach custom domains", removeDomains))
	return cmd
}

func domainListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				domains, err := s.Client.Projects.Domains(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("fetching domains: %w", err)
				}
				out := cmd.OutOrStdout()
				if p.Domain != "" {
					fmt.Fprintf(out, "%s (default)\n", p.Domain)
				}
				for _, d := range domains {
					fmt.Fprintln(out, d)
				}
				if p.Domain == "" && len(domains) == 0 {
					fmt.Fprintf(out, "No domains on %q.\n", p.Name)
				}
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func domainChangeCommand(use, short string, apply func(current, names []string) ([]string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <domain>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				current, err := s.Client.Projects.Domains(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("fetching domains: %w", err)
				}
				next, err := apply(current, args)
				if err != nil {
					return err
				}
				if err := s.Client.Projects.SetDomains(ctx, p.ID, next); err != nil {
					return fmt.Errorf("updating domains: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Domains on %q: %s\n", p.Name, cmdutil.OrDash(strings.Join(next, ", ")))
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func normalizeDomain(d string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
}

func addDomains(current, names []string) ([]string, error) {
	out := slices.Clone(current)
	for _, n := range names {
		d := normalizeDomain(n)
		if d == "" || strings.ContainsAny(d, "/: ") {
			return nil, fmt.Errorf("invalid domain %q", n)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func removeDomains(current, names []string) ([]string, error) {
	out := slices.Clone(current)
	for _, n := range names {
		d := normalizeDomain(n)
		i := slices.Index(out, d)
		if i < 0 {
			return nil, fmt.Errorf("domain %q: %w", n, domain.ErrNotFound)
		}
		out = slices.Delete(out, i, i+1)
	}
	return out, nil
}
