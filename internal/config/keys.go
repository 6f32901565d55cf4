package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "api-host").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save). Values must pass
	// Validate first.
	Set func(cfg *Config, value string)

	// Validate rejects malformed values before Set is called. Nil means
	// any value is accepted.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "api-host",
		Description: "Hostname of the platform API",
		Get:         func(cfg *Config) string { return cfg.APIHost },
		Set:         func(cfg *Config, v string) { cfg.APIHost = v },
		Validate:    validateHost,
	},
	{
		Name:        "api-port",
		Description: "Port of the platform API",
		Get: func(cfg *Config) string {
			if cfg.APIPort == 0 {
				return ""
			}
			return strconv.Itoa(cfg.APIPort)
		},
		Set: func(cfg *Config, v string) {
			cfg.APIPort, _ = parsePort(v)
		},
		Validate: func(v string) error {
			_, err := parsePort(v)
			return err
		},
	},
	{
		Name:        "api-ssl",
		Description: "Use HTTPS to reach the platform API (true/false)",
		Get: func(cfg *Config) string {
			if cfg.APISSL == nil {
				return ""
			}
			return strconv.FormatBool(*cfg.APISSL)
		},
		Set: func(cfg *Config, v string) {
			b, _ := strconv.ParseBool(v)
			cfg.APISSL = &b
		},
		Validate: func(v string) error {
			if _, err := strconv.ParseBool(v); err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			return nil
		},
	},
	{
		Name:        "default-region",
		Description: "Region used when creating databases and add-ons",
		Get:         func(cfg *Config) string { return cfg.DefaultRegion },
		Set:         func(cfg *Config, v string) { cfg.DefaultRegion = v },
	},
	{
		Name:        "poll-interval",
		Description: "Delay between status polls during lifecycle operations (e.g. 1s)",
		Get:         func(cfg *Config) string { return cfg.PollInterval },
		Set:         func(cfg *Config, v string) { cfg.PollInterval = v },
		Validate:    validateDuration,
	},
	{
		Name:        "poll-timeout",
		Description: "Maximum time to wait for a lifecycle operation (e.g. 30m)",
		Get:         func(cfg *Config) string { return cfg.PollTimeout },
		Set:         func(cfg *Config, v string) { cfg.PollTimeout = v },
		Validate:    validateDuration,
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

func validateHost(v string) error {
	if v == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.Contains(v, "://") || strings.ContainsAny(v, "/ ") {
		return fmt.Errorf("expected a bare hostname, got %q", v)
	}
	return nil
}

func validateDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q (examples: 500ms, 2s, 10m)", v)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", v)
	}
	return nil
}
