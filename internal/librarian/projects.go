package librarian

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"onmodulus/xervo/internal/domain"
)

// ProjectsService handles calls on /project and /user/{id}/projects.
type ProjectsService service

// LogSource is one entry of a log map: the source key (usually a servo
// or log file name) and its full text so far.
type LogSource struct {
	Key  string
	Text string
}

// List returns the projects owned by userID.
func (s *ProjectsService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	var projects []domain.Project
	if _, err := s.client.call(ctx, http.MethodGet, route("user", userID, "projects"), nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Get fetches one project. A null response is reported as domain.ErrNotFound.
func (s *ProjectsService) Get(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	payload, err := s.client.call(ctx, http.MethodGet, route("project", id), nil, nil, &p)
	if err != nil {
		return nil, err
	}
	if payload.IsNull() {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// Create creates a project and returns it as the server recorded it.
func (s *ProjectsService) Create(ctx context.Context, opts domain.CreateProjectOpts) (*domain.Project, error) {
	var p domain.Project
	if _, err := s.client.call(ctx, http.MethodPost, route("project", "create"), nil, opts, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a project and all of its servos.
func (s *ProjectsService) Delete(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodDelete, route("project", id), nil, nil, nil)
	return err
}

// Start asks the platform to start a stopped project. The call returns
// once the request is accepted, not once the project is running.
func (s *ProjectsService) Start(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodGet, route("project", id, "start"), nil, nil, nil)
	return err
}

// Stop asks the platform to stop a project.
func (s *ProjectsService) Stop(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodGet, route("project", id, "stop"), nil, nil, nil)
	return err
}

// Restart asks the platform to restart every servo of a project.
func (s *ProjectsService) Restart(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodGet, route("project", id, "restart"), nil, nil, nil)
	return err
}

// Scale sets the number of servos per provider region.
func (s *ProjectsService) Scale(ctx context.Context, id string, instances []domain.ScaleInstance) error {
	body := map[string]any{"instances": instances}
	_, err := s.client.call(ctx, http.MethodPost, route("project", id, "scale"), nil, body, nil)
	return err
}

// Upload streams a zip archive of the project source. The response
// envelope is interpreted like any JSON call.
func (s *ProjectsService) Upload(ctx context.Context, id string, archive io.Reader, size int64) error {
	header := http.Header{}
	header.Set("Content-Type", "application/zip")
	if size > 0 {
		header.Set("X-Content-Length", strconv.FormatInt(size, 10))
	}
	return s.client.rawJSON(ctx, RawRequest{
		Method: http.MethodPut,
		Path:   route("project", id, "upload"),
		Header: header,
		Body:   archive,
	}, nil)
}

// UploadProgress returns the fraction of the current upload received by
// the platform, between 0 and 1.
func (s *ProjectsService) UploadProgress(ctx context.Context, id string) (float64, error) {
	var p domain.UploadProgress
	if _, err := s.client.call(ctx, http.MethodGet, route("project", id, "upload", "progress"), nil, nil, &p); err != nil {
		return 0, err
	}
	return p.Progress, nil
}

// DeployLogs returns the log sources of the current deploy in the order
// the server listed them.
func (s *ProjectsService) DeployLogs(ctx context.Context, id string) ([]LogSource, error) {
	payload, err := s.client.call(ctx, http.MethodGet, route("project", id, "deploy", "logs"), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return logSources(payload)
}

// Logs returns the runtime logs of every servo of a project.
func (s *ProjectsService) Logs(ctx context.Context, id string) ([]LogSource, error) {
	payload, err := s.client.call(ctx, http.MethodGet, route("project", id, "logs"), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return logSources(payload)
}

// DownloadLogs streams the project's log archive into w and returns the
// number of bytes written. A transfer that stalls for longer than stall
// fails with ErrSocketTimeout.
func (s *ProjectsService) DownloadLogs(ctx context.Context, id string, w io.Writer, stall time.Duration) (int64, error) {
	header := http.Header{}
	if stall > 0 {
		header.Set(SocketTimeoutHeader, strconv.FormatInt(stall.Milliseconds(), 10))
	}
	resp, err := s.client.raw(ctx, RawRequest{
		Method: http.MethodGet,
		Path:   route("project", id, "logs", "download"),
		Header: header,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		if _, err := interpret(resp.StatusCode, data); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("downloading logs: HTTP %d", resp.StatusCode)
	}
	return io.Copy(w, resp.Body)
}

// Env returns the environment variables set on a project.
func (s *ProjectsService) Env(ctx context.Context, id string) ([]domain.EnvVar, error) {
	var out struct {
		EnvVars []domain.EnvVar `json:"envVars"`
	}
	if _, err := s.client.call(ctx, http.MethodGet, route("project", id, "env"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.EnvVars, nil
}

// SetEnv replaces the full set of environment variables on a project.
func (s *ProjectsService) SetEnv(ctx context.Context, id string, vars []domain.EnvVar) error {
	if vars == nil {
		vars = []domain.EnvVar{}
	}
	body := map[string]any{"envVars": vars}
	_, err := s.client.call(ctx, http.MethodPut, route("project", id, "env"), nil, body, nil)
	return err
}

// Domains returns the custom domains attached to a project.
func (s *ProjectsService) Domains(ctx context.Context, id string) ([]string, error) {
	var out struct {
		Domains []string `json:"customDomains"`
	}
	if _, err := s.client.call(ctx, http.MethodGet, route("project", id, "domains"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Domains, nil
}

// SetDomains replaces the custom domains attached to a project.
func (s *ProjectsService) SetDomains(ctx context.Context, id string, domains []string) error {
	if domains == nil {
		domains = []string{}
	}
	body := map[string]any{"customDomains": domains}
	_, err := s.client.call(ctx, http.MethodPut, route("project", id, "domains"), nil, body, nil)
	return err
}

// logSources walks a {key: text} object in document order. A null
// payload yields no sources.
func logSources(p Payload) ([]LogSource, error) {
	if p.IsNull() {
		return nil, nil
	}
	root := gjson.ParseBytes(p)
	if !root.IsObject() {
		return nil, protocolError(0, fmt.Errorf("log payload is %s, want object", root.Type))
	}
	var out []LogSource
	root.ForEach(func(key, value gjson.Result) bool {
		out = append(out, LogSource{Key: key.String(), Text: value.String()})
		return true
	})
	return out, nil
}
