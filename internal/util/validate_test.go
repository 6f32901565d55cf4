package util

import (
	"strings"
	"testing"
)

func TestValidateProjectName_Valid(t *testing.T) {
	valid := []string{
		"web",
		"my project",
		"a",
		"api_server-01",
		"Blog 2",
		"UPPERCASE",
		"123numeric",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateProjectName(name); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", name, err)
			}
		})
	}
}

func TestValidateProjectName_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		wantMsg string
	}{
		{"", "cannot be empty"},
		{strings.Repeat("a", 51), "at most 50 characters"},
		{"web.server", "invalid characters"},
		{"web/app", "invalid characters"},
		{"-web", "must start with an alphanumeric"},
		{" web", "must start with an alphanumeric"},
		{"web_", "must end with an alphanumeric"},
		{"web ", "must end with an alphanumeric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.name)
			if err == nil {
				t.Fatalf("expected %q to be invalid", tt.name)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidateDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"orders", false},
		{"orders_v2", false},
		{"my-db", false},
		{"a", true},
		{"my db", true},
		{"db.prod", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatabaseName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := Truncate("a long error message", 10); got != "a long ..." {
		t.Errorf("expected truncated string, got %q", got)
	}
}
