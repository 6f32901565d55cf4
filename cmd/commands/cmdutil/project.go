package cmdutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/manifest"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/platform"
	"onmodulus/xervo/internal/tui"

	"github.com/spf13/cobra"
)

// AddProjectFlag registers -p/--project on cmd.
func AddProjectFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", "", "Project name or id (defaults to xervo.toml, then a picker)")
}

// ResolveProject finds the project a command acts on: the --project
// flag, then the project named in the nearest xervo.toml, then an
// interactive picker when stdout is a terminal.
func ResolveProject(ctx context.Context, cmd *cobra.Command, s *platform.Session) (*domain.Project, error) {
	ref, _ := cmd.Flags().GetString("project")
	ref = strings.TrimSpace(ref)
	if ref == "" {
		dir, _ := os.Getwd()
		if m, err := manifest.Find(dir); err == nil {
			ref = m.Project
		} else {
			return nil, err
		}
	}

	userID, err := s.UserID()
	if err != nil {
		return nil, err
	}

	var projects []domain.Project
	err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching projects...", func(ctx context.Context) error {
		var err error
		projects, err = s.Client.Projects.List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	if ref != "" {
		return MatchProject(projects, ref)
	}
	if !progress.IsTerminal(cmd.OutOrStdout()) {
		return nil, fmt.Errorf("no project given: use --project or add %s", manifest.FileName)
	}
	return tui.PickProject(projects)
}

// MatchProject finds ref among projects by id, then by name ignoring case.
func MatchProject(projects []domain.Project, ref string) (*domain.Project, error) {
	for i := range projects {
		if projects[i].ID == ref {
			return &projects[i], nil
		}
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, ref) {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", ref, domain.ErrNotFound)
}

// WithProject opens an authenticated session, resolves the target
// project and calls fn. The session is closed when fn returns.
func WithProject(cmd *cobra.Command, fn func(ctx context.Context, s *platform.Session, p *domain.Project) error) error {
	s, err := AuthedSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := Context(cmd)
	defer cancel()
	s.OnInterrupt(cancel)

	p, err := ResolveProject(ctx, cmd, s)
	if err != nil {
		return err
	}
	return fn(ctx, s, p)
}
