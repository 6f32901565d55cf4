package domain

import "errors"

// Sentinel errors for classifying failures independently of the transport.
// The API client wraps these so commands can branch on error categories
// without inspecting server messages.
//
//	return fmt.Errorf("failed to find project: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a state or uniqueness conflict, such as
	// a duplicate project name.
	ErrConflict = errors.New("conflict")

	// ErrNotLoggedIn indicates no stored session exists for the CLI.
	ErrNotLoggedIn = errors.New("not logged in (run 'xervo auth login')")

	// ErrTimeout indicates a polled transition did not reach its target
	// status within the allowed duration.
	ErrTimeout = errors.New("timed out")
)
