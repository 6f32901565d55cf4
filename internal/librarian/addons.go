package librarian

import (
	"context"
	"net/http"

	"onmodulus/xervo/internal/domain"
)

// AddonsService handles calls on /addons and /project/{id}/addons.
type AddonsService service

// Available lists the add-ons that can be provisioned.
func (s *AddonsService) Available(ctx context.Context) ([]domain.AvailableAddon, error) {
	var addons []domain.AvailableAddon
	if _, err := s.client.call(ctx, http.MethodGet, route("addons"), nil, nil, &addons); err != nil {
		return nil, err
	}
	return addons, nil
}

// List returns the add-ons provisioned on a project.
func (s *AddonsService) List(ctx context.Context, projectID string) ([]domain.Addon, error) {
	var addons []domain.Addon
	if _, err := s.client.call(ctx, http.MethodGet, route("project", projectID, "addons"), nil, nil, &addons); err != nil {
		return nil, err
	}
	return addons, nil
}

// Provision adds an add-on to a project.
func (s *AddonsService) Provision(ctx context.Context, projectID string, opts domain.ProvisionAddonOpts) (*domain.Addon, error) {
	var a domain.Addon
	if _, err := s.client.call(ctx, http.MethodPost, route("project", projectID, "addons"), nil, opts, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Deprovision removes an add-on from a project.
func (s *AddonsService) Deprovision(ctx context.Context, projectID, addonID string) error {
	_, err := s.client.call(ctx, http.MethodDelete, route("project", projectID, "addons", addonID), nil, nil, nil)
	return err
}
