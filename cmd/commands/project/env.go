package project

import (
	"context"
	"fmt"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/services/platform"

	"github.com/spf13/cobra"
)

// EnvCommand returns the "project env" command group.
func EnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage project environment variables",
		Long: `List, set and unset environment variables. Changes apply the next time
the project starts.`,
	}
	cmd.AddCommand(envListCommand())
	cmd.AddCommand(envSetCommand())
	cmd.AddCommand(envUnsetCommand())
	return cmd
}

func envListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				vars, err := s.Client.Projects.Env(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("fetching environment: %w", err)
				}
				out := cmd.OutOrStdout()
				if format != cmdutil.FormatTable {
					if vars == nil {
						vars = []domain.EnvVar{}
					}
					return cmdutil.PrintStructured(out, format, vars)
				}
				if len(vars) == 0 {
					fmt.Fprintf(out, "No environment variables set on %q.\n", p.Name)
					return nil
				}
				rows := make([][]string, 0, len(vars))
				for _, v := range vars {
					rows = append(rows, []string{v.Name, v.Value})
				}
				return cmdutil.Table(out, []string{"NAME", "VALUE"}, rows)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

func envSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set NAME=VALUE...",
		Short: "Set environment variables",
		Long: `Set one or more environment variables, replacing existing values.

Example:
  xervo project env set -p api NODE_ENV=production PORT=8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := ParseEnvArgs(args)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				vars, err := s.Client.Projects.Env(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("fetching environment: %w", err)
				}
				if err := s.Client.Projects.SetEnv(ctx, p.ID, MergeEnv(vars, updates)); err != nil {
					return fmt.Errorf("updating environment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %d variable(s) on %q.\n", len(updates), p.Name)
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func envUnsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset NAME...",
		Short: "Remove environment variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				vars, err := s.Client.Projects.Env(ctx, p.ID)
				if err != nil {
					return fmt.Errorf("fetching environment: %w", err)
				}
				kept, missing := UnsetEnv(vars, args)
				for _, name := range missing {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is not set\n", name)
				}
				if len(kept) == len(vars) {
					return nil
				}
				if err := s.Client.Projects.SetEnv(ctx, p.ID, kept); err != nil {
					return fmt.Errorf("updating environment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d variable(s) from %q.\n", len(vars)-len(kept), p.Name)
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

// ParseEnvArgs parses NAME=VALUE arguments. The value may be empty or
// contain further '=' characters.
func ParseEnvArgs(args []string) ([]domain.EnvVar, error) {
	out := make([]domain.EnvVar, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q (want NAME=VALUE)", arg)
		}
		out = append(out, domain.EnvVar{Name: name, Value: value})
	}
	return out, nil
}

// MergeEnv applies updates to vars. Existing names keep their position;
// new names are appended in the order given.
func MergeEnv(vars, updates []domain.EnvVar) []domain.EnvVar {
	out := append([]domain.EnvVar(nil), vars...)
	index := make(map[string]int, len(out))
	for i, v := range out {
		index[v.Name] = i
	}
	for _, u := range updates {
		if i, ok := index[u.Name]; ok {
			out[i].Value = u.Value
			continue
		}
		index[u.Name] = len(out)
		out = append(out, u)
	}
	return out
}

// UnsetEnv removes names from vars and reports the names that were not
// set.
func UnsetEnv(vars []domain.EnvVar, names []string) (kept []domain.EnvVar, missing []string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	found := make(map[string]bool, len(names))
	kept = []domain.EnvVar{}
	for _, v := range vars {
		if drop[v.Name] {
			found[v.Name] = true
			continue
		}
		kept = append(kept, v)
	}
	for _, n := range names {
		if !found[n] {
			missing = append(missing, n)
		}
	}
	return kept, missing
}
