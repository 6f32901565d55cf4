package librarian

import (
	"context"
	"fmt"
	"net/http"

	"onmodulus/xervo/internal/domain"
)

// ServosService handles calls on /servo and /project/{id}/servos.
type ServosService service

// List returns the servos running a project.
func (s *ServosService) List(ctx context.Context, projectID string) ([]domain.Servo, error) {
	var servos []domain.Servo
	if _, err := s.client.call(ctx, http.MethodGet, route("project", projectID, "servos"), nil, nil, &servos); err != nil {
		return nil, err
	}
	return servos, nil
}

// Get fetches one servo.
func (s *ServosService) Get(ctx context.Context, id string) (*domain.Servo, error) {
	var sv domain.Servo
	payload, err := s.client.call(ctx, http.MethodGet, route("servo", id), nil, nil, &sv)
	if err != nil {
		return nil, err
	}
	if payload.IsNull() {
		return nil, fmt.Errorf("servo %q: %w", id, domain.ErrNotFound)
	}
	return &sv, nil
}

// Restart asks the platform to restart a single servo.
func (s *ServosService) Restart(ctx context.Context, id string) error {
	_, err := s.client.call(ctx, http.MethodGet, route("servo", id, "restart"), nil, nil, nil)
	return err
}
