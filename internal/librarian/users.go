package librarian

import (
	"context"
	"fmt"
	"net/http"

	"onmodulus/xervo/internal/domain"
)

// UsersService handles calls on /user.
type UsersService service

// Authenticate exchanges a login (username or email) and password for a
// user record carrying an API token. It is the one call that does not
// need a token, though it sends whatever the client holds.
func (s *UsersService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	body := map[string]string{"login": login, "password": password}
	var u domain.User
	payload, err := s.client.call(ctx, http.MethodPost, route("user", "authenticate"), nil, body, &u)
	if err != nil {
		return nil, err
	}
	if payload.IsNull() || u.Token == "" {
		return nil, fmt.Errorf("authenticating %q: %w", login, domain.ErrUnauthorized)
	}
	return &u, nil
}

// Create registers a new account.
func (s *UsersService) Create(ctx context.Context, opts domain.SignupOpts) (*domain.User, error) {
	var u domain.User
	if _, err := s.client.call(ctx, http.MethodPost, route("user", "create"), nil, opts, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Get fetches a user by id.
func (s *UsersService) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	payload, err := s.client.call(ctx, http.MethodGet, route("user", id), nil, nil, &u)
	if err != nil {
		return nil, err
	}
	if payload.IsNull() {
		return nil, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}
