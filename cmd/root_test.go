package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoot_RegistersCommandGroups(t *testing.T) {
	closeLog := func() error { return nil }
	root := rootCmd(&closeLog)

	want := []string{"auth", "config", "project", "addon", "servo", "database", "image", "operations"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root is missing the %q command", name)
		}
	}
}

func TestRoot_SetsUpLogging(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	logPath := filepath.Join(t.TempDir(), "xervo.log")

	closeLog := func() error { return nil }
	root := rootCmd(&closeLog)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"--log-file", logPath, "config", "get", "--key", "nope"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown configuration key") {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := closeLog(); err != nil {
		t.Fatalf("closing log: %v", err)
	}
	if strings.Contains(errOut.String(), "Error:") {
		t.Errorf("errors must be printed by Execute, not cobra: %q", errOut.String())
	}
}
