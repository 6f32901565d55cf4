package domain

import "strings"

// Resource status values reported by the API. Comparison is case-insensitive;
// use StatusIs rather than ==.
const (
	StatusUploading  = "uploading"
	StatusDeploying  = "deploying"
	StatusRunning    = "running"
	StatusStopped    = "stopped"
	StatusRestarting = "restarting"
	StatusNone       = "none"
)

// StatusIs reports whether a reported status matches want, ignoring case and
// surrounding whitespace.
func StatusIs(status, want string) bool {
	return strings.EqualFold(strings.TrimSpace(status), want)
}
