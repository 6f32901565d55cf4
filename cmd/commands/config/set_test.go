package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"onmodulus/xervo/internal/config"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	t.Setenv(config.EnvAPIHost, "")
	t.Setenv(config.EnvAPIPort, "")
	t.Setenv(config.EnvAPISSL, "")
	return path
}

// execConfig runs the config command with args and returns stdout, stderr
// and the command error.
func execConfig(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestSet_APIHost(t *testing.T) {
	setupTestConfig(t)

	stdout, _, err := execConfig(t, "set", "api-host", "api.example.net")
	if err != nil {
		t.Fatalf("set error = %v", err)
	}
	if !strings.Contains(stdout, `api-host set to "api.example.net"`) {
		t.Errorf("stdout = %q", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.APIHost != "api.example.net" {
		t.Errorf("APIHost = %q", cfg.APIHost)
	}
}

func TestSet_KeyIsCaseInsensitive(t *testing.T) {
	setupTestConfig(t)

	if _, _, err := execConfig(t, "set", "POLL-Interval", "250ms"); err != nil {
		t.Fatalf("set error = %v", err)
	}
	cfg, _ := config.Load()
	if cfg.PollInterval != "250ms" {
		t.Errorf("PollInterval = %q, want 250ms", cfg.PollInterval)
	}
}

func TestSet_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"api-port", "http", "invalid port"},
		{"api-ssl", "maybe", "true or false"},
		{"api-host", "https://api.example.net", "bare hostname"},
		{"poll-timeout", "-1s", "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setupTestConfig(t)
			_, _, err := execConfig(t, "set", tt.key, tt.value)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("set %s %s error = %v, want %q", tt.key, tt.value, err, tt.want)
			}
		})
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, _, err := execConfig(t, "set", "bogus-key", "value")
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("error = %v, want unknown configuration key", err)
	}
}

func TestGet_NotSet(t *testing.T) {
	setupTestConfig(t)

	stdout, _, err := execConfig(t, "get", "default-region")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "not set") {
		t.Errorf("expected 'not set', got: %s", stdout)
	}
}

func TestGet_Set(t *testing.T) {
	path := setupTestConfig(t)

	cfg := &config.Config{DefaultRegion: "us-east-1"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, _, err := execConfig(t, "get", "--key", "default-region")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != "us-east-1" {
		t.Errorf("stdout = %q, want us-east-1", stdout)
	}
}

func TestGet_All(t *testing.T) {
	path := setupTestConfig(t)
	off := false
	cfg := &config.Config{APIHost: "localhost", APIPort: 8080, APISSL: &off}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execConfig(t, "get")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"api-host: localhost", "api-port: 8080", "poll-interval: (not set)", "http://localhost:8080"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestGet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, _, err := execConfig(t, "get", "bogus-key")
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Errorf("error = %v, want unknown configuration key", err)
	}
}
