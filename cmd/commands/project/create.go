package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/manifest"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/catalog"
	"onmodulus/xervo/internal/tui"
	"onmodulus/xervo/internal/tui/styles"
	"onmodulus/xervo/internal/util"

	"github.com/spf13/cobra"
)

// CreateCommand returns the "project create" command.
func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a new project.

In a terminal, missing values are asked for by an interactive wizard.
Otherwise --name is required. --image takes an image name or label,
optionally followed by @version; without a version the image's first
tag is used.

With --link the new project is written to xervo.toml in the current
directory so later commands pick it up without --project.

Examples:
  xervo project create
  xervo project create --name api --image node@20 --servo-size 1024 --link`,
		Args:         cobra.NoArgs,
		RunE:         runCreate,
		SilenceUsage: true,
	}

	cmd.Flags().String("name", "", "Project name")
	cmd.Flags().Int("servo-size", 0, fmt.Sprintf("Servo memory in MB (default %d)", tui.DefaultServoSize))
	cmd.Flags().String("image", "", "Runtime image, e.g. node or node@20")
	cmd.Flags().Bool("link", false, "Write the project to xervo.toml in the current directory")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	size, _ := cmd.Flags().GetInt("servo-size")
	imageRef, _ := cmd.Flags().GetString("image")
	link, _ := cmd.Flags().GetBool("link")
	name = strings.TrimSpace(name)

	s, err := cmdutil.AuthedSession()
	if err != nil {
		return err
	}
	defer s.Close()

	userID, err := s.UserID()
	if err != nil {
		return err
	}

	ctx, cancel := cmdutil.Context(cmd)
	defer cancel()

	cat := s.Catalog()
	interactive := progress.IsTerminal(cmd.OutOrStdout())

	var choice *tui.ProjectChoice
	if interactive && (name == "" || imageRef == "") {
		choice, err = createWizard(ctx, cmd, cat, tui.ProjectChoice{Name: name, ServoSize: size}, imageRef)
		if errors.Is(err, tui.ErrAborted) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Project creation cancelled.")
			return nil
		}
	} else {
		choice, err = createFromFlags(ctx, cat, name, size, imageRef)
	}
	if err != nil {
		return err
	}

	opts := domain.CreateProjectOpts{
		Name:      choice.Name,
		Creator:   userID,
		ServoSize: choice.ServoSize,
	}
	if choice.Tag.ID != "" {
		opts.ImageTagIDs = catalog.ImageTagIDs(choice.Image, choice.Tag)
	}

	var project *domain.Project
	err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Creating project...", func(ctx context.Context) error {
		project, err = s.Client.Projects.Create(ctx, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Project %q created (id %s).\n", styles.SuccessText.Render("✓"), project.Name, project.ID)

	if link {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		m, err := manifest.Load(dir)
		if err != nil {
			return err
		}
		m.Project = project.Name
		if err := m.Save(); err != nil {
			return fmt.Errorf("linking project: %w", err)
		}
		fmt.Fprintf(out, "Linked %s to %s.\n", m.Path(), project.Name)
	}
	return nil
}

func createFromFlags(ctx context.Context, cat *catalog.Service, name string, size int, imageRef string) (*tui.ProjectChoice, error) {
	if name == "" {
		return nil, fmt.Errorf("--name is required when not running in a terminal")
	}
	if err := util.ValidateProjectName(name); err != nil {
		return nil, err
	}
	if size == 0 {
		size = tui.DefaultServoSize
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid servo size %d", size)
	}

	choice := &tui.ProjectChoice{Name: name, ServoSize: size}
	if imageRef != "" {
		img, tag, err := cat.ResolveImage(ctx, imageRef)
		if err != nil {
			return nil, err
		}
		choice.Image, choice.Tag = img, tag
	}
	return choice, nil
}

func createWizard(ctx context.Context, cmd *cobra.Command, cat *catalog.Service, prefill tui.ProjectChoice, imageRef string) (*tui.ProjectChoice, error) {
	var images []domain.Image
	err := tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching images...", func(ctx context.Context) error {
		var err error
		images, err = cat.Images(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}

	if imageRef != "" {
		img, tag, err := cat.ResolveImage(ctx, imageRef)
		if err != nil {
			return nil, err
		}
		prefill.Image, prefill.Tag = img, tag
	}
	return tui.CreateProjectForm(images, prefill)
}
