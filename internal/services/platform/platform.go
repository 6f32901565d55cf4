// Package platform assembles what every command needs to talk to the
// librarian API: configuration, the stored token, the transport and
// the typed client.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"onmodulus/xervo/internal/cache"
	"onmodulus/xervo/internal/config"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/poller"
	"onmodulus/xervo/internal/progress"
	"onmodulus/xervo/internal/services/auth"
	"onmodulus/xervo/internal/services/catalog"
	"onmodulus/xervo/internal/services/operation"
)

// UserAgent is sent with every request.
const UserAgent = "xervo-cli"

// Session is one invocation's connection to the platform.
type Session struct {
	Config *config.Config
	Client *librarian.Client
	Logger *slog.Logger

	transport *librarian.Transport
	store     auth.Store
	interrupt func()
}

// Open loads the configuration and builds an unauthenticated session.
func Open(logger *slog.Logger) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, auth.DefaultStore(), logger), nil
}

// New builds a session from an already loaded configuration.
func New(cfg *config.Config, store auth.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tr := librarian.NewTransport(librarian.Options{
		Endpoint: librarian.Endpoint{
			Host: cfg.Host(),
			Port: cfg.Port(),
			SSL:  cfg.SSL(),
		},
		Logger:    logger,
		UserAgent: UserAgent,
	})
	return &Session{
		Config:    cfg,
		Client:    librarian.NewClient(tr, ""),
		Logger:    logger,
		transport: tr,
		store:     store,
	}
}

// Close releases the transport.
func (s *Session) Close() error {
	return s.transport.Close()
}

// Store returns the token store.
func (s *Session) Store() auth.Store {
	return s.store
}

// Token returns the API token: XERVO_TOKEN when set, otherwise the one
// stored for the logged-in user.
func (s *Session) Token() (string, error) {
	if t := os.Getenv(config.EnvToken); t != "" {
		return t, nil
	}
	if s.Config.Username == "" {
		return "", domain.ErrNotLoggedIn
	}
	token, err := s.store.GetToken(auth.NormalizeUsername(s.Config.Username))
	if errors.Is(err, auth.ErrTokenNotFound) {
		return "", domain.ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("reading stored token: %w", err)
	}
	return token, nil
}

// Authenticate attaches the token to the session's client.
func (s *Session) Authenticate() error {
	token, err := s.Token()
	if err != nil {
		return err
	}
	s.Client = s.Client.WithToken(token)
	return nil
}

// UserID returns the logged-in user's id.
func (s *Session) UserID() (string, error) {
	if s.Config.UserID == "" {
		return "", domain.ErrNotLoggedIn
	}
	return s.Config.UserID, nil
}

// Login authenticates with the API and remembers the user: the token in
// the store, the identity in the config file.
func (s *Session) Login(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.Client.Users.Authenticate(ctx, login, password)
	if err != nil {
		return nil, err
	}
	username := user.Username
	if username == "" {
		username = login
	}
	if err := s.store.SetToken(auth.NormalizeUsername(username), user.Token); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}
	s.Config.Username = username
	s.Config.UserID = user.ID
	if err := s.Config.Save(); err != nil {
		return nil, err
	}
	s.Client = s.Client.WithToken(user.Token)
	return user, nil
}

// Logout forgets the stored token and identity.
func (s *Session) Logout() error {
	if s.Config.Username != "" {
		err := s.store.DeleteToken(auth.NormalizeUsername(s.Config.Username))
		if err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
			return fmt.Errorf("removing token: %w", err)
		}
	}
	s.Config.ClearIdentity()
	return s.Config.Save()
}

// OnInterrupt sets the function called when the user presses ctrl+c
// while a poller's spinner owns the terminal. Commands pass the cancel
// function of their context, since raw mode turns ctrl+c into a key
// press instead of SIGINT.
func (s *Session) OnInterrupt(fn func()) {
	s.interrupt = fn
}

// Poller returns a poller drawing on w with the configured interval and
// timeout.
func (s *Session) Poller(w io.Writer) *poller.Poller {
	var opts []progress.TeaOption
	if s.interrupt != nil {
		opts = append(opts, progress.WithInterrupt(s.interrupt))
	}
	return poller.New(progress.NewIndicator(w, opts...), w, poller.Options{
		Interval: s.Config.Interval(),
		Timeout:  s.Config.Timeout(),
		Logger:   s.Logger,
	})
}

// Operations returns the operation service. An unavailable store is
// logged and tracking is skipped.
func (s *Session) Operations(ctx context.Context, p *poller.Poller) *operation.Service {
	var repo opstore.Repository
	r, err := opstore.Open(ctx)
	if err != nil {
		s.Logger.Warn("operation store unavailable", "error", err)
	} else {
		repo = r
	}
	return operation.NewService(s.Client, repo, p, s.Logger)
}

// Catalog returns the cached image and add-on catalog.
func (s *Session) Catalog() *catalog.Service {
	return catalog.NewService(s.Client, cache.NewDefault())
}
