package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

// DefaultIaaS is the provider assumed by scale arguments that name only
// a region.
const DefaultIaaS = "aws"

// transition is one lifecycle request and the status that completes it.
type transition struct {
	command string
	message string
	target  string
	done    string
	submit  func(ctx context.Context, s *platform.Session, id string) error
}

var (
	startTransition = transition{
		command: "project start",
		message: "Starting project...",
		target:  domain.StatusRunning,
		done:    "started",
		submit: func(ctx context.Context, s *platform.Session, id string) error {
			return s.Client.Projects.Start(ctx, id)
		},
	}
	stopTransition = transition{
		command: "project stop",
		message: "Stopping project...",
		target:  domain.StatusStopped,
		done:    "stopped",
		submit: func(ctx context.Context, s *platform.Session, id string) error {
			return s.Client.Projects.Stop(ctx, id)
		},
	}
	restartTransition = transition{
		command: "project restart",
		message: "Restarting project...",
		target:  domain.StatusRunning,
		done:    "restarted",
		submit: func(ctx context.Context, s *platform.Session, id string) error {
			return s.Client.Projects.Restart(ctx, id)
		},
	}
)

// StartCommand returns the "project start" command.
func StartCommand() *cobra.Command {
	return lifecycleCommand("start", "Start a project", startTransition)
}

// StopCommand returns the "project stop" command.
func StopCommand() *cobra.Command {
	return lifecycleCommand("stop", "Stop a project", stopTransition)
}

// RestartCommand returns the "project restart" command.
func RestartCommand() *cobra.Command {
	return lifecycleCommand("restart", "Restart a project", restartTransition)
}

func lifecycleCommand(use, short string, t transition) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + ` and wait until it is ` + t.target + `.

The wait is recorded locally so that, if the CLI is interrupted, it can be
resumed with "xervo operations --resume".

Example:
  xervo project ` + use + ` -p api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				return runTransition(ctx, cmd, s, p, t)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func runTransition(ctx context.Context, cmd *cobra.Command, s *platform.Session, p *domain.Project, t transition) error {
	pl := s.Poller(cmd.ErrOrStderr())
	ops := s.Operations(ctx, pl)
	defer ops.Close()

	op := &opstore.Operation{
		Command:      t.command,
		Kind:         opstore.KindProject,
		ResourceID:   p.ID,
		ResourceName: p.Name,
		TargetStatus: t.target,
		LastStatus:   p.Status,
	}
	_, err := ops.Run(ctx, op, t.message, func(ctx context.Context) error {
		return t.submit(ctx, s, p.ID)
	})
	if err != nil {
		return fmt.Errorf("%s %q: %w", t.command, p.Name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Project %q %s.\n", styles.SuccessText.Render("✓"), p.Name, t.done)
	return nil
}

// ScaleCommand returns the "project scale" command.
func ScaleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale <[iaas:]region=count>...",
		Short: "Set how many servos run in each region",
		Long: `Scale a project to the given number of servos per region and wait
until it is running again. The provider defaults to ` + DefaultIaaS + `.

Examples:
  xervo project scale -p api us-east-1=2
  xervo project scale -p api aws:us-east-1=2 joyent:us-east-1=1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instances, err := ParseScaleArgs(args)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				t := transition{
					command: "project scale",
					message: "Scaling project...",
					target:  domain.StatusRunning,
					done:    "scaled",
					submit: func(ctx context.Context, s *platform.Session, id string) error {
						return s.Client.Projects.Scale(ctx, id, instances)
					},
				}
				return runTransition(ctx, cmd, s, p, t)
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

// ParseScaleArgs parses "[iaas:]region=count" arguments. A region may be
// given once per provider.
func ParseScaleArgs(args []string) ([]domain.ScaleInstance, error) {
	seen := make(map[string]bool, len(args))
	out := make([]domain.ScaleInstance, 0, len(args))
	for _, arg := range args {
		where, countStr, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid scale argument %q (want [iaas:]region=count)", arg)
		}
		iaas, region, hasIaaS := strings.Cut(strings.TrimSpace(where), ":")
		if !hasIaaS {
			iaas, region = DefaultIaaS, iaas
		}
		iaas = strings.ToLower(strings.TrimSpace(iaas))
		region = strings.TrimSpace(region)
		if iaas == "" || region == "" {
			return nil, fmt.Errorf("invalid scale argument %q (want [iaas:]region=count)", arg)
		}

		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("invalid servo count in %q", arg)
		}

		key := iaas + ":" + region
		if seen[key] {
			return nil, fmt.Errorf("region %s given more than once", key)
		}
		seen[key] = true
		out = append(out, domain.ScaleInstance{IaaS: iaas, Region: region, Count: count})
	}
	return out, nil
}
