// Package config handles persistent user configuration for xervo.
//
// Configuration is stored as JSON at ~/.config/xervo/config.json (or the
// platform-equivalent path returned by os.UserConfigDir). The file is read
// and written whole; the API token is never stored here (see the auth
// package).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appDir   = "xervo"
	fileName = "config.json"
)

// Defaults applied when a value is not set in the file or environment.
const (
	DefaultAPIHost      = "api.onmodulus.net"
	DefaultAPIPort      = 443
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 30 * time.Minute
)

// Environment variables that override file values for a single invocation.
const (
	EnvAPIHost = "XERVO_API_HOST"
	EnvAPIPort = "XERVO_API_PORT"
	EnvAPISSL  = "XERVO_API_SSL"
	EnvToken   = "XERVO_TOKEN"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences and the logged-in identity that persist
// across invocations.
type Config struct {
	APIHost       string `json:"api_host,omitempty"`
	APIPort       int    `json:"api_port,omitempty"`
	APISSL        *bool  `json:"api_ssl,omitempty"`
	Username      string `json:"username,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	DefaultRegion string `json:"default_region,omitempty"`
	PollInterval  string `json:"poll_interval,omitempty"`
	PollTimeout   string `json:"poll_timeout,omitempty"`

	env envOverrides
}

// envOverrides holds values read from the environment at load time. They
// take precedence over the file but are never written back to it.
type envOverrides struct {
	host string
	port int
	ssl  *bool
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Dir returns the directory holding the config file. Other local state
// (the operation database, the debug log) lives alongside it.
func Dir() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads the config file from disk and returns the parsed Config with
// environment overrides applied.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.env.host = os.Getenv(EnvAPIHost)
	if v := os.Getenv(EnvAPIPort); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvAPIPort, err)
		}
		c.env.port = port
	}
	if v := os.Getenv(EnvAPISSL); v != "" {
		ssl, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvAPISSL, err)
		}
		c.env.ssl = &ssl
	}
	return nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

// Host returns the API host, honouring the environment override.
func (c *Config) Host() string {
	switch {
	case c.env.host != "":
		return c.env.host
	case c.APIHost != "":
		return c.APIHost
	}
	return DefaultAPIHost
}

// Port returns the API port, honouring the environment override.
func (c *Config) Port() int {
	switch {
	case c.env.port != 0:
		return c.env.port
	case c.APIPort != 0:
		return c.APIPort
	}
	return DefaultAPIPort
}

// SSL reports whether the API is reached over HTTPS. Defaults to true.
func (c *Config) SSL() bool {
	switch {
	case c.env.ssl != nil:
		return *c.env.ssl
	case c.APISSL != nil:
		return *c.APISSL
	}
	return true
}

// Interval returns the status polling interval.
func (c *Config) Interval() time.Duration {
	return durationOr(c.PollInterval, DefaultPollInterval)
}

// Timeout returns the maximum time a status poll may run.
func (c *Config) Timeout() time.Duration {
	return durationOr(c.PollTimeout, DefaultPollTimeout)
}

// LoggedIn reports whether a user identity has been stored by a login.
func (c *Config) LoggedIn() bool {
	return c.Username != "" && c.UserID != ""
}

// ClearIdentity forgets the logged-in user.
func (c *Config) ClearIdentity() {
	c.Username = ""
	c.UserID = ""
}

func durationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}
