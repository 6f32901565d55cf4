package librarian

import (
	"context"
	"fmt"
	"net/http"

	"onmodulus/xervo/internal/domain"
)

// DatabasesService handles calls on /database and /user/{id}/databases.
type DatabasesService service

// List returns the databases owned by userID.
func (s *DatabasesService) List(ctx context.Context, userID string) ([]domain.Database, error) {
	var dbs []domain.Database
	if _, err := s.client.call(ctx, http.MethodGet, route("user", userID, "databases"), nil, nil, &dbs); err != nil {
		return nil, err
	}
	return dbs, nil
}

// Create requests a new database. Provisioning continues asynchronously;
// poll Get until the status is running.
func (s *DatabasesService) Create(ctx context.Context, opts domain.CreateDatabaseOpts) (*domain.Database, error) {
	var db domain.Database
	if _, err := s.client.call(ctx, http.MethodPost, route("database", "create"), nil, opts, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// Get fetches one database.
func (s *DatabasesService) Get(ctx context.Context, id string) (*domain.Database, error) {
	var db domain.Database
	payload, err := s.client.call(ctx, http.MethodGet, route("database", id), nil, nil, &db)
	if err != nil {
		return nil, err
	}
	if payload.IsNull() {
		return nil, fmt.Errorf("database %q: %w", id, domain.ErrNotFound)
	}
	return &db, nil
}

// CreateUser adds a login to a database.
func (s *DatabasesService) CreateUser(ctx context.Context, id string, user domain.DatabaseUser) error {
	_, err := s.client.call(ctx, http.MethodPost, route("database", id, "user"), nil, user, nil)
	return err
}
