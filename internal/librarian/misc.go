package librarian

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"onmodulus/xervo/internal/domain"
)

// SSLService handles calls on /project/{id}/ssl.
type SSLService service

// Get returns the certificate installed on a project, or nil when none is.
func (s *SSLService) Get(ctx context.Context, projectID string) (*domain.SSLCertificate, error) {
	var cert domain.SSLCertificate
	payload, err := s.client.call(ctx, http.MethodGet, route("project", projectID, "ssl"), nil, nil, &cert)
	if err != nil || payload.IsNull() {
		return nil, err
	}
	return &cert, nil
}

// Add installs a certificate on a project, replacing any existing one.
func (s *SSLService) Add(ctx context.Context, projectID string, opts domain.AddSSLOpts) (*domain.SSLCertificate, error) {
	var cert domain.SSLCertificate
	if _, err := s.client.call(ctx, http.MethodPost, route("project", projectID, "ssl"), nil, opts, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Remove deletes the certificate installed on a project.
func (s *SSLService) Remove(ctx context.Context, projectID string) error {
	_, err := s.client.call(ctx, http.MethodDelete, route("project", projectID, "ssl"), nil, nil, nil)
	return err
}

// StatsService handles calls on /project/{id}/stats.
type StatsService service

// Project returns request statistics for a project between start and end.
func (s *StatsService) Project(ctx context.Context, projectID string, start, end time.Time) (*domain.ProjectStats, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	var stats domain.ProjectStats
	if _, err := s.client.call(ctx, http.MethodGet, route("project", projectID, "stats"), q, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ImagesService handles calls on /images.
type ImagesService service

// List returns the runtime images projects can be built on.
func (s *ImagesService) List(ctx context.Context) ([]domain.Image, error) {
	var images []domain.Image
	if _, err := s.client.call(ctx, http.MethodGet, route("images"), nil, nil, &images); err != nil {
		return nil, err
	}
	return images, nil
}
