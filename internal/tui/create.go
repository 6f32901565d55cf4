package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/util"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// ServoSizes are the memory sizes, in MB, a project's servos can have.
var ServoSizes = []int{192, 396, 512, 1024, 2048}

// DefaultServoSize is used when no size is chosen.
const DefaultServoSize = 512

// ProjectChoice is the outcome of the create-project wizard.
type ProjectChoice struct {
	Name      string
	ServoSize int
	Image     domain.Image
	Tag       domain.ImageTag
}

// CreateProjectForm walks the user through naming a project and picking
// its runtime image, version and servo size. Fields already set in
// prefill are offered as defaults.
func CreateProjectForm(images []domain.Image, prefill ProjectChoice) (*ProjectChoice, error) {
	usable := usableImages(images)
	if len(usable) == 0 {
		return nil, fmt.Errorf("no images available")
	}
	accessible := os.Getenv("ACCESSIBLE") != ""

	choice := prefill
	if choice.ServoSize == 0 {
		choice.ServoSize = DefaultServoSize
	}

	// --- Form 1: Name + Image ---

	imageID := choice.Image.ID
	if imageID == "" {
		imageID = usable[0].ID
	}
	imageOpts := buildImageOptions(usable)

	if err := runForm(accessible,
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&choice.Name).
				Validate(func(value string) error {
					return util.ValidateProjectName(strings.TrimSpace(value))
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Runtime").
				Options(imageOpts...).
				Value(&imageID).
				Height(selectHeight(len(imageOpts), 10)),
		),
	); err != nil {
		return nil, err
	}
	choice.Name = strings.TrimSpace(choice.Name)
	choice.Image = imageByID(usable, imageID)

	// --- Form 2: Version + Servo size + Confirm ---

	tagID := choice.Tag.ID
	if !hasTag(choice.Image, tagID) {
		tagID = choice.Image.Tags[0].ID
	}
	tagOpts := buildTagOptions(choice.Image)
	sizeOpts := buildServoSizeOptions(ServoSizes, choice.ServoSize)

	confirmed := true
	summary := huh.NewNote().
		Title("Summary").
		DescriptionFunc(func() string {
			c := choice
			c.Tag = tagByID(choice.Image, tagID)
			return buildProjectSummary(c)
		}, []any{&tagID, &choice.ServoSize})

	if err := runForm(accessible,
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Version").
				Options(tagOpts...).
				Value(&tagID).
				Height(selectHeight(len(tagOpts), 8)),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Servo size").
				Options(sizeOpts...).
				Value(&choice.ServoSize),
		),
		huh.NewGroup(
			summary,
			huh.NewConfirm().
				Title("Create this project?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirmed),
		),
	); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrAborted
	}

	choice.Tag = tagByID(choice.Image, tagID)
	return &choice, nil
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// --- Option builders ---

// usableImages drops images without versions, since a project needs a tag.
func usableImages(images []domain.Image) []domain.Image {
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if len(img.Tags) > 0 {
			out = append(out, img)
		}
	}
	return out
}

func buildImageOptions(images []domain.Image) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(images))
	for _, img := range images {
		options = append(options, huh.NewOption(imageLabel(img), img.ID))
	}
	return options
}

func buildTagOptions(img domain.Image) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(img.Tags))
	for i, tag := range img.Tags {
		label := tag.Version
		if i == 0 {
			label += " (latest)"
		}
		options = append(options, huh.NewOption(label, tag.ID))
	}
	return options
}

func buildServoSizeOptions(sizes []int, selected int) []huh.Option[int] {
	options := make([]huh.Option[int], 0, len(sizes)+1)
	found := false
	for _, size := range sizes {
		options = append(options, huh.NewOption(servoSizeLabel(size), size))
		found = found || size == selected
	}
	if !found && selected > 0 {
		options = append(options, huh.NewOption("Custom: "+servoSizeLabel(selected), selected))
	}
	return options
}

// --- Summary ---

func buildProjectSummary(c ProjectChoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", valueOr(c.Name, "Not set"))
	fmt.Fprintf(&b, "Runtime: %s\n", valueOr(imageLabel(c.Image), "Not selected"))
	fmt.Fprintf(&b, "Version: %s\n", valueOr(c.Tag.Version, "Not selected"))
	fmt.Fprintf(&b, "Servo size: %s", servoSizeLabel(c.ServoSize))
	return b.String()
}

// --- Lookup helpers ---

func imageByID(images []domain.Image, id string) domain.Image {
	for _, img := range images {
		if img.ID == id {
			return img
		}
	}
	return images[0]
}

func hasTag(img domain.Image, id string) bool {
	for _, tag := range img.Tags {
		if tag.ID == id {
			return true
		}
	}
	return false
}

func tagByID(img domain.Image, id string) domain.ImageTag {
	for _, tag := range img.Tags {
		if tag.ID == id {
			return tag
		}
	}
	return domain.ImageTag{}
}

// --- Label helpers ---

func imageLabel(img domain.Image) string {
	if label := strings.TrimSpace(img.Label); label != "" {
		if img.Name != "" && !strings.EqualFold(label, img.Name) {
			return label + " (" + img.Name + ")"
		}
		return label
	}
	return strings.TrimSpace(img.Name)
}

func servoSizeLabel(mb int) string {
	if mb >= 1024 && mb%1024 == 0 {
		return strconv.Itoa(mb/1024) + " GB"
	}
	return strconv.Itoa(mb) + " MB"
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func selectHeight(optionCount, max int) int {
	if optionCount < max {
		return optionCount
	}
	return max
}
