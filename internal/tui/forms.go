package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"
)

// Credentials is what the login form collects.
type Credentials struct {
	Login    string
	Password string
}

// LoginForm asks for a username (or email) and password. A non-empty
// login is offered as the default.
func LoginForm(login string) (*Credentials, error) {
	c := &Credentials{Login: login}
	err := runForm(os.Getenv("ACCESSIBLE") != "",
		huh.NewGroup(
			huh.NewInput().
				Title("Username or email").
				Value(&c.Login).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(required("password")),
		),
	)
	if err != nil {
		return nil, err
	}
	c.Login = strings.TrimSpace(c.Login)
	return c, nil
}

// SignupForm collects the details for a new account.
func SignupForm() (*domain.SignupOpts, error) {
	var opts domain.SignupOpts
	var confirm string
	err := runForm(os.Getenv("ACCESSIBLE") != "",
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&opts.Username).Validate(required("username")),
			huh.NewInput().Title("Email").Value(&opts.Email).Validate(func(v string) error {
				if !strings.Contains(v, "@") {
					return errors.New("enter a valid email address")
				}
				return nil
			}),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&opts.Password).Validate(required("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&confirm).Validate(func(v string) error {
				if v != opts.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		),
	)
	if err != nil {
		return nil, err
	}
	opts.Username = strings.TrimSpace(opts.Username)
	opts.Email = strings.TrimSpace(opts.Email)
	return &opts, nil
}

// PickProject lets the user choose one of projects.
func PickProject(projects []domain.Project) (*domain.Project, error) {
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects found")
	}
	options := buildProjectOptions(projects)
	selected := projects[0].ID
	err := runForm(os.Getenv("ACCESSIBLE") != "",
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a project").
				Options(options...).
				Value(&selected).
				Height(selectHeight(len(options), 12)),
		),
	)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == selected {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", selected, domain.ErrNotFound)
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title, description string) (bool, error) {
	var ok bool
	c := huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&ok)
	if description != "" {
		c = c.Description(description)
	}
	if err := runForm(os.Getenv("ACCESSIBLE") != "", huh.NewGroup(c)); err != nil {
		return false, err
	}
	return ok, nil
}

// Fetch runs action behind a one-shot spinner on w. When w is not a
// terminal the action runs without one.
func Fetch(ctx context.Context, w io.Writer, title string, action func(context.Context) error) error {
	if !progress.IsTerminal(w) {
		return action(ctx)
	}
	err := spinner.New().
		Title(title).
		Accessible(os.Getenv("ACCESSIBLE") != "").
		Output(w).
		Context(ctx).
		ActionWithErr(action).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// ReadPassword reads a password from the terminal without echo, or a
// single line from r when r is not a terminal.
func ReadPassword(r io.Reader, prompt io.Writer) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimRight(line, "\r"), nil
}

// --- Option builders ---

func buildProjectOptions(projects []domain.Project) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(projects))
	for _, p := range projects {
		options = append(options, huh.NewOption(projectOptionLabel(p), p.ID))
	}
	return options
}

func projectOptionLabel(p domain.Project) string {
	name := valueOr(p.Name, p.ID)
	if p.Status == "" {
		return name
	}
	return name + " " + styles.StatusStyle(p.Status).Render("("+strings.ToLower(p.Status)+")")
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
