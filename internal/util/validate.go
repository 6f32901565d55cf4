package util

import (
	"fmt"
	"regexp"
)

// validProjectChars matches alphanumerics, spaces, hyphens and underscores.
var validProjectChars = regexp.MustCompile(`^[a-zA-Z0-9 _\-]+$`)

// validDatabaseChars matches alphanumerics, hyphens and underscores.
var validDatabaseChars = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// ValidateProjectName checks that a project name is acceptable to the
// platform:
//   - Between 1 and 50 characters
//   - Only alphanumeric characters, spaces, hyphens and underscores
//   - First and last characters must be alphanumeric
func ValidateProjectName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > 50 {
		return fmt.Errorf("project name must be at most 50 characters, got %d", len(name))
	}

	if !validProjectChars.MatchString(name) {
		return fmt.Errorf("project name %q contains invalid characters (only a-z, A-Z, 0-9, spaces, hyphens and underscores are allowed)", name)
	}

	if !isAlphanumeric(name[0]) {
		return fmt.Errorf("project name must start with an alphanumeric character, got %q", string(name[0]))
	}
	if last := name[len(name)-1]; !isAlphanumeric(last) {
		return fmt.Errorf("project name must end with an alphanumeric character, got %q", string(last))
	}

	return nil
}

// ValidateDatabaseName checks that a database name has at least 2 characters
// and no spaces or punctuation other than hyphens and underscores.
func ValidateDatabaseName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("database name must be at least 2 characters, got %d", len(name))
	}
	if !validDatabaseChars.MatchString(name) {
		return fmt.Errorf("database name %q contains invalid characters (only a-z, A-Z, 0-9, hyphens and underscores are allowed)", name)
	}
	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
